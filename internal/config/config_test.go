package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "grottobot", cfg.DBName)
	assert.Equal(t, 60, cfg.CacheTTLSec)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "bot",
		DBPassword: "secret",
		DBHost:     "db",
		DBPort:     "5433",
		DBName:     "economy",
	}

	assert.Equal(t, "postgres://bot:secret@db:5433/economy?sslmode=disable", cfg.GetDBConnString())
}
