package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTokenStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewTokenStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, store.SetToken(ctx, "tok-2"))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Clear(ctx))
}

func TestTokenStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewTokenStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, first.SetToken(ctx, "persisted"))

	second, err := NewTokenStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	token, err := second.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestTokenStore_FilePermissions(t *testing.T) {
	store, err := NewTokenStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, store.SetToken(context.Background(), "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestTokenStore_CorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0600))

	store, err := NewTokenStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	token, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}
