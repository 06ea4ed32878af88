package service

import (
	"context"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

// LicenseAPI is the part of the remote client the licenses and dashboard
// views need.
type LicenseAPI interface {
	ListLicenses(ctx context.Context) ([]license.License, error)
	CreateLicense(ctx context.Context, req license.CreateRequest) (*license.License, error)
	UpdateLicense(ctx context.Context, key string, req license.UpdateRequest) error
	RevokeLicense(ctx context.Context, key string) error
	DeleteLicense(ctx context.Context, key string) error
}

type StatsAPI interface {
	GetStats(ctx context.Context) (license.Stats, error)
	GetLogs(ctx context.Context) ([]activity.Entry, error)
}

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	GetStats(ctx context.Context) (license.Stats, error)
}

// Resetter is implemented by views that drop their state and invalidate
// in-flight loads when they are left.
type Resetter interface {
	Reset()
}
