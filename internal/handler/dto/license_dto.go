package dto

import (
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/service"
)

type LicenseRowResponse struct {
	ID          string         `json:"id"`
	LicenseKey  string         `json:"license_key"`
	ShortKey    string         `json:"short_key"`
	UserName    string         `json:"user_name"`
	UserEmail   string         `json:"user_email"`
	Status      license.Status `json:"status"`
	StatusLabel string         `json:"status_label"`
	ExpiresOn   string         `json:"expires_on"`
	CreatedOn   string         `json:"created_on"`
	Notes       string         `json:"notes,omitempty"`
}

func NewLicenseRowResponse(row service.LicenseRow) LicenseRowResponse {
	return LicenseRowResponse{
		ID:          row.License.ID,
		LicenseKey:  row.License.LicenseKey,
		ShortKey:    row.ShortKey,
		UserName:    row.License.UserName,
		UserEmail:   row.License.UserEmail,
		Status:      row.Status,
		StatusLabel: row.StatusLabel,
		ExpiresOn:   row.ExpiresOn,
		CreatedOn:   row.CreatedOn,
		Notes:       row.License.Notes,
	}
}

func NewLicenseRowResponses(rows []service.LicenseRow) []LicenseRowResponse {
	out := make([]LicenseRowResponse, len(rows))
	for i, r := range rows {
		out[i] = NewLicenseRowResponse(r)
	}
	return out
}

// ListLicensesRequest carries the filter inputs of GET / and
// GET /api/v1/licenses.
type ListLicensesRequest struct {
	Search string `form:"search"`
	Status string `form:"status"`
}

type LicensesResponse struct {
	Search   string               `json:"search"`
	Status   license.Status       `json:"status"`
	Count    int                  `json:"count"`
	Licenses []LicenseRowResponse `json:"licenses"`
}
