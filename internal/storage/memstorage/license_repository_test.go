package memstorage

import (
	"context"
	"testing"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewLicenseRepository()

	require.NoError(t, repo.Create(ctx, &license.License{LicenseKey: "A", UserName: "first"}))
	require.NoError(t, repo.Create(ctx, &license.License{LicenseKey: "B", UserName: "second"}))
	assert.ErrorIs(t, repo.Create(ctx, &license.License{LicenseKey: "A"}), license.ErrDuplicateKey)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].LicenseKey)

	list[0].UserName = "mutated"
	got, err := repo.FindByKey(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "second", got.UserName)

	got.IsActive = true
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByKey(ctx, "B")
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	require.NoError(t, repo.Delete(ctx, "A"))
	_, err = repo.FindByKey(ctx, "A")
	assert.ErrorIs(t, err, license.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "A"), license.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &license.License{LicenseKey: "Z"}), license.ErrNotFound)
}

func TestUserRepository_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo, err := NewUserRepository("admin", "s3cret")
	require.NoError(t, err)

	assert.NoError(t, repo.Authenticate(ctx, "ADMIN", "s3cret"))
	assert.ErrorIs(t, repo.Authenticate(ctx, "admin", "wrong"), ierr.ErrInvalidCredentials)
	assert.ErrorIs(t, repo.Authenticate(ctx, "nobody", "s3cret"), ierr.ErrInvalidCredentials)
}

func TestActivityLog_NewestFirst(t *testing.T) {
	log := NewActivityLog()
	log.Append(activityEntry("create"))
	log.Append(activityEntry("revoke"))

	got := log.List()
	require.Len(t, got, 2)
	assert.Equal(t, "revoke", got[0].Action)
}

func activityEntry(action string) activity.Entry {
	return activity.Entry{Action: action, LicenseKey: "K", Success: true}
}
