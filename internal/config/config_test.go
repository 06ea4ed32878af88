package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownPeriod)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "file", cfg.Session.Driver)
	assert.Equal(t, 7, cfg.Worker.ExpiringWithinDays)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("api:\n  baseURL: https://licenses.example.com/api\nsession:\n  driver: memory\n")
	require.NoError(t, os.WriteFile(path, yaml, 0600))

	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://licenses.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDisplayConfig_Location(t *testing.T) {
	assert.Equal(t, time.Local, DisplayConfig{}.Location())
	assert.Equal(t, time.Local, DisplayConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", DisplayConfig{Timezone: "UTC"}.Location().String())
}
