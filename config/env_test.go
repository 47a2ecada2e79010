package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(map[string]string{
		EnvCurrency:    "EUR",
		EnvStoreType:   "file",
		EnvStorePath:   "/tmp/j.json",
		EnvLogLevel:    "debug",
		EnvAuthEnabled: "false",
		EnvTokenTTL:    "24h",
		"UNRELATED":    "x",
	}))
	assert.Equal(t, "EUR", cfg.Account.Currency)
	assert.Equal(t, StoreConfig{Type: "file", Path: "/tmp/j.json"}, cfg.Store)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "24h", cfg.Auth.TokenTTL)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, Default().ApplyEnv(map[string]string{EnvAuthEnabled: "maybe"}))
}

func TestEnviron(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRADEJOURNAL_STORE=memory\nTRADEJOURNAL_CURRENCY=GBP\n"), 0o600))
	t.Setenv(EnvCurrency, "JPY")

	env, err := Environ(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", env[EnvStoreType])
	assert.Equal(t, "JPY", env[EnvCurrency], "process environment wins")

	env, err = Environ(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "JPY", env[EnvCurrency])
}
