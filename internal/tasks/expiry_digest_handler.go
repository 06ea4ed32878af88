package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"go.uber.org/zap"
)

const DefaultWithinDays = 7

type LicenseLister interface {
	ListLicenses(ctx context.Context) ([]license.License, error)
}

// ExpiryDigestHandler reports active licenses that are about to expire. It
// only reads: the remote API stays the single writer.
type ExpiryDigestHandler struct {
	api    LicenseLister
	now    func() time.Time
	logger *zap.Logger
}

func NewExpiryDigestHandler(api LicenseLister, logger *zap.Logger) *ExpiryDigestHandler {
	return &ExpiryDigestHandler{
		api:    api,
		now:    time.Now,
		logger: logger.Named("ExpiryDigestHandler"),
	}
}

func (h *ExpiryDigestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeExpiryDigest {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p ExpiryDigestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal payload for expiry digest task", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.WithinDays <= 0 {
		p.WithinDays = DefaultWithinDays
	}

	h.logger.Info("Processing license expiry digest task...", zap.Int("within_days", p.WithinDays))

	list, err := h.api.ListLicenses(ctx)
	if err != nil {
		if errors.Is(err, ierr.ErrUnauthorized) {
			h.logger.Warn("No valid admin session, skipping expiry digest")
			return fmt.Errorf("expiry digest: %v: %w", err, asynq.SkipRetry)
		}
		h.logger.Error("Failed to list licenses for expiry digest", zap.Error(err))
		return fmt.Errorf("listing licenses: %w", err)
	}

	now := h.now()
	expiring := ExpiringWithin(list, now, p.WithinDays)
	for _, lic := range expiring {
		h.logger.Info("License expiring soon",
			zap.String("license_key", lic.LicenseKey),
			zap.String("user_email", lic.UserEmail),
			zap.Time("expires_at", lic.ExpiresAt.Time),
		)
	}

	h.logger.Info("License expiry digest task finished", zap.Int("checked_licenses", len(list)), zap.Int("expiring", len(expiring)))
	return nil
}

// ExpiringWithin returns the active licenses whose expiry falls within days
// of now, soonest first.
func ExpiringWithin(list []license.License, now time.Time, days int) []license.License {
	horizon := now.AddDate(0, 0, days)
	out := make([]license.License, 0)
	for _, lic := range list {
		if license.DeriveStatus(lic, now) != license.StatusActive || !lic.ExpiresAt.Valid {
			continue
		}
		if lic.ExpiresAt.Time.After(horizon) {
			continue
		}
		out = append(out, lic)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiresAt.Time.Before(out[j].ExpiresAt.Time)
	})
	return out
}
