package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func lic(key string, active bool, expires time.Time) license.License {
	return license.License{LicenseKey: key, IsActive: active, ExpiresAt: license.NewTimestamp(expires)}
}

type stubLister struct {
	list []license.License
	err  error
}

func (s stubLister) ListLicenses(ctx context.Context) ([]license.License, error) {
	return s.list, s.err
}

func TestExpiringWithin(t *testing.T) {
	list := []license.License{
		lic("later", true, now.AddDate(0, 0, 6)),
		lic("far", true, now.AddDate(0, 0, 30)),
		lic("soon", true, now.Add(time.Hour)),
		lic("revoked", false, now.AddDate(0, 0, 1)),
		lic("expired", true, now.Add(-time.Hour)),
		{LicenseKey: "no-expiry", IsActive: true},
	}

	got := ExpiringWithin(list, now, 7)
	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[0].LicenseKey)
	assert.Equal(t, "later", got[1].LicenseKey)
}

func TestNewExpiryDigestTask(t *testing.T) {
	task, err := NewExpiryDigestTask(3)
	require.NoError(t, err)
	assert.Equal(t, TypeExpiryDigest, task.Type())

	var p ExpiryDigestPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, 3, p.WithinDays)
}

func TestExpiryDigestHandler_ProcessTask(t *testing.T) {
	h := NewExpiryDigestHandler(stubLister{list: []license.License{lic("soon", true, now.Add(time.Hour))}}, zaptest.NewLogger(t))
	h.now = func() time.Time { return now }

	task, err := NewExpiryDigestTask(7)
	require.NoError(t, err)
	assert.NoError(t, h.ProcessTask(context.Background(), task))

	assert.Error(t, h.ProcessTask(context.Background(), asynq.NewTask("other", nil)))

	bad := asynq.NewTask(TypeExpiryDigest, []byte("{"))
	assert.ErrorIs(t, h.ProcessTask(context.Background(), bad), asynq.SkipRetry)
}

func TestExpiryDigestHandler_NoSession(t *testing.T) {
	h := NewExpiryDigestHandler(stubLister{err: ierr.ErrUnauthorized}, zaptest.NewLogger(t))

	task, err := NewExpiryDigestTask(7)
	require.NoError(t, err)
	assert.ErrorIs(t, h.ProcessTask(context.Background(), task), asynq.SkipRetry)
}
