package memstorage

import (
	"context"
	"strings"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/ierr"
	"golang.org/x/crypto/bcrypt"
)

type adminUser struct {
	username     string
	passwordHash []byte
}

// UserRepository holds the admin accounts of the development API.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]adminUser
}

// NewUserRepository seeds a single admin account.
func NewUserRepository(username, password string) (*UserRepository, error) {
	repo := &UserRepository{users: make(map[string]adminUser)}
	if err := repo.Add(username, password); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *UserRepository) Add(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(username)] = adminUser{username: username, passwordHash: hash}
	return nil
}

// Authenticate returns ierr.ErrInvalidCredentials for an unknown user or a
// wrong password alike.
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) error {
	r.mu.RLock()
	u, ok := r.users[strings.ToLower(username)]
	r.mu.RUnlock()

	if !ok {
		return ierr.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return ierr.ErrInvalidCredentials
	}
	return nil
}
