package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvCurrency    = "TRADEJOURNAL_CURRENCY"
	EnvStoreType   = "TRADEJOURNAL_STORE"
	EnvStorePath   = "TRADEJOURNAL_DB"
	EnvLogLevel    = "TRADEJOURNAL_LOG_LEVEL"
	EnvAuthEnabled = "TRADEJOURNAL_AUTH_ENABLED"
	EnvTokenTTL    = "TRADEJOURNAL_TOKEN_TTL"
)

// Environ returns the variables of the dotenv file at path overlaid with
// the process environment, which wins. A missing file is not an error.
func Environ(path string) (map[string]string, error) {
	env := map[string]string{}
	if path != "" {
		vars, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range vars {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "TRADEJOURNAL_") {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv copies the TRADEJOURNAL_* values in env onto c.
func (c *Config) ApplyEnv(env map[string]string) error {
	if v, ok := env[EnvCurrency]; ok {
		c.Account.Currency = v
	}
	if v, ok := env[EnvStoreType]; ok {
		c.Store.Type = v
	}
	if v, ok := env[EnvStorePath]; ok {
		c.Store.Path = v
	}
	if v, ok := env[EnvLogLevel]; ok {
		c.Logging.Level = v
	}
	if v, ok := env[EnvAuthEnabled]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAuthEnabled, err)
		}
		c.Auth.Enabled = b
	}
	if v, ok := env[EnvTokenTTL]; ok {
		c.Auth.TokenTTL = v
	}
	return nil
}
