// Package storage selects the token store backing the admin session.
package storage

import (
	"context"
	"fmt"

	"github.com/makkenzo/license-admin-console/internal/config"
	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/storage/filestore"
	"github.com/makkenzo/license-admin-console/internal/storage/memstorage"
	"github.com/makkenzo/license-admin-console/internal/storage/redis"
	"go.uber.org/zap"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// OpenTokenStore builds the store named by cfg.Session.Driver. The returned
// close function releases its connection, if any.
func OpenTokenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.TokenStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Driver {
	case DriverFile, "":
		store, err := filestore.NewTokenStore(cfg.Session.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file token store", zap.String("path", store.Path()))
		return store, noop, nil
	case DriverRedis:
		client, err := redis.NewRedisClient(ctx, &cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewTokenStore(client, logger), client.Close, nil
	case DriverMemory:
		logger.Info("Using in-memory token store; the session ends with the process")
		return memstorage.NewTokenStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session driver %q", ierr.ErrValidation, cfg.Session.Driver)
	}
}
