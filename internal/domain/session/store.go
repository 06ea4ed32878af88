package session

import "context"

// StorageKey is the fixed name under which the admin token is persisted.
const StorageKey = "admin_token"

// TokenStore persists the single admin bearer token. An empty string from
// Token means no session; Clear on an empty store is not an error.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
