package devapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/util"
)

type seedLicense struct {
	name, email    string
	createdDaysAgo int
	validDays      int
	active         bool
}

var demoLicenses = []seedLicense{
	{name: "Alice Martin", email: "alice@example.com", createdDaysAgo: 40, validDays: 365, active: true},
	{name: "Bruno Silva", email: "bruno@example.com", createdDaysAgo: 60, validDays: 30, active: true},
	{name: "Chloe Dubois", email: "chloe@example.com", createdDaysAgo: 20, validDays: 90, active: false},
	{name: "Dmitri Ivanov", email: "dmitri@example.com", createdDaysAgo: 3, validDays: 5, active: true},
}

// Seed fills the store with a handful of licenses in every status and a
// spread of historical activity.
func (s *Server) Seed(ctx context.Context) error {
	now := s.now().UTC()

	for i, d := range demoLicenses {
		key, err := util.GenerateLicenseKey()
		if err != nil {
			return err
		}
		created := now.AddDate(0, 0, -d.createdDaysAgo)
		lic := &license.License{
			ID:         uuid.NewString(),
			LicenseKey: key,
			UserName:   d.name,
			UserEmail:  d.email,
			IsActive:   d.active,
			ExpiresAt:  license.NewTimestamp(created.AddDate(0, 0, d.validDays)),
			CreatedAt:  license.NewTimestamp(created),
			Notes:      "demo data",
		}
		if err := s.licenses.Create(ctx, lic); err != nil {
			return fmt.Errorf("seed license %d: %w", i, err)
		}

		s.AppendLog(activity.Entry{Action: activity.ActionCreate, LicenseKey: key, Success: true, Timestamp: created.Format(time.RFC3339)})
		for day := 1; day <= min(d.createdDaysAgo, 14); day += 1 + i {
			status := license.DeriveStatus(*lic, now.AddDate(0, 0, -day))
			s.AppendLog(activity.Entry{
				Action:     activity.ActionValidate,
				LicenseKey: key,
				Success:    status == license.StatusActive,
				Timestamp:  now.AddDate(0, 0, -day).Format(time.RFC3339),
				Notes:      string(status),
			})
		}
		if !d.active {
			s.AppendLog(activity.Entry{Action: activity.ActionRevoke, LicenseKey: key, Success: true, Timestamp: now.AddDate(0, 0, -2).Format(time.RFC3339)})
		}
	}

	s.logger.Info("Seeded demo data")
	return nil
}
