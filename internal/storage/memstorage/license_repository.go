package memstorage

import (
	"context"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

// LicenseRepository is the in-memory backing store of the development API.
// List returns records newest first.
type LicenseRepository struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]*license.License
}

var _ license.Repository = (*LicenseRepository)(nil)

func NewLicenseRepository() *LicenseRepository {
	return &LicenseRepository{byKey: make(map[string]*license.License)}
}

func (r *LicenseRepository) Create(ctx context.Context, lic *license.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[lic.LicenseKey]; exists {
		return license.ErrDuplicateKey
	}
	stored := *lic
	r.byKey[lic.LicenseKey] = &stored
	r.order = append(r.order, lic.LicenseKey)
	return nil
}

func (r *LicenseRepository) FindByKey(ctx context.Context, key string) (*license.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lic, ok := r.byKey[key]
	if !ok {
		return nil, license.ErrNotFound
	}
	licCopy := *lic
	return &licCopy, nil
}

func (r *LicenseRepository) List(ctx context.Context) ([]*license.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*license.License, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		licCopy := *r.byKey[r.order[i]]
		out = append(out, &licCopy)
	}
	return out, nil
}

func (r *LicenseRepository) Update(ctx context.Context, lic *license.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[lic.LicenseKey]; !ok {
		return license.ErrNotFound
	}
	stored := *lic
	r.byKey[lic.LicenseKey] = &stored
	return nil
}

func (r *LicenseRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[key]; !ok {
		return license.ErrNotFound
	}
	delete(r.byKey, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
