package handler

import (
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/service"
)

type loginPage struct {
	Error    string
	Username string
}

type consolePage struct {
	Tabs        []service.TabInfo
	Current     service.Tab
	CurrentName string
	Error       string
	Dashboard   *dashboardPage
	Licenses    *licensesPage
	Stats       *statsPage
}

type dashboardPage struct {
	Loaded bool
	Stats  license.Stats
	Recent []service.LicenseRow
}

type statusOption struct {
	Value license.Status
	Label string
}

var statusOptions = []statusOption{
	{Value: license.StatusAll, Label: "All statuses"},
	{Value: license.StatusActive, Label: license.StatusActive.Label()},
	{Value: license.StatusExpired, Label: license.StatusExpired.Label()},
	{Value: license.StatusRevoked, Label: license.StatusRevoked.Label()},
}

type licensesPage struct {
	Loaded      bool
	Search      string
	Status      license.Status
	Statuses    []statusOption
	Rows        []service.LicenseRow
	Modal       service.Modal
	Selected    *licenseDetails
	CreateDraft license.CreateRequest
	EditDraft   license.UpdateRequest
}

// licenseDetails is the selected license with full timestamps.
type licenseDetails struct {
	Row       service.LicenseRow
	CreatedAt string
	ExpiresAt string
}

type statsPage struct {
	Loaded bool
	Range  activity.Range
	Ranges []activity.Range
	Report service.StatsReport
}
