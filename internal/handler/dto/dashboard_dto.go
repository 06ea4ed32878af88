package dto

import (
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

type DashboardResponse struct {
	Stats          license.Stats        `json:"stats"`
	RecentLicenses []LicenseRowResponse `json:"recent_licenses"`
}

type LogRowResponse struct {
	Action     string `json:"action"`
	LicenseKey string `json:"license_key"`
	ShortKey   string `json:"short_key"`
	Success    bool   `json:"success"`
	Timestamp  string `json:"timestamp"`
	At         string `json:"at"`
	Notes      string `json:"notes,omitempty"`
}

type StatsRequest struct {
	Range string `form:"range"`
}

type StatsResponse struct {
	Stats       license.Stats    `json:"stats"`
	ActiveRatio int              `json:"active_ratio"`
	Summary     activity.Summary `json:"summary"`
	RecentLogs  []LogRowResponse `json:"recent_logs"`
}
