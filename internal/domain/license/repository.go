package license

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("license not found")

// Repository is the storage contract of the development License API stub.
type Repository interface {
	Create(ctx context.Context, license *License) error
	FindByKey(ctx context.Context, key string) (*License, error)
	List(ctx context.Context) ([]*License, error)
	Update(ctx context.Context, license *License) error
	Delete(ctx context.Context, key string) error
}

var ErrDuplicateKey = errors.New("license key already exists")
