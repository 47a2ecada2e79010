package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"
)

// Config is the journal's settings file.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
}

// AccountConfig controls how money is shown.
type AccountConfig struct {
	Currency string `json:"currency" yaml:"currency"`
}

// StoreConfig picks the persistence backend.
type StoreConfig struct {
	Type string `json:"type" yaml:"type"` // "file", "sqlite" or "memory"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// AuthConfig controls the password gate.
type AuthConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	TokenTTL string `json:"token_ttl,omitempty" yaml:"token_ttl,omitempty"` // e.g. "720h"
}

// ParseTokenTTL converts the TTL string to a duration. Empty means zero,
// which callers treat as the default.
func (a AuthConfig) ParseTokenTTL() (time.Duration, error) {
	if a.TokenTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(a.TokenTTL)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if money.GetCurrency(strings.ToUpper(c.Account.Currency)) == nil {
		return fmt.Errorf("unknown currency: %s", c.Account.Currency)
	}
	switch c.Store.Type {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for %s store", c.Store.Type)
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'file', 'sqlite' or 'memory'")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level: %s", c.Logging.Level)
	}
	ttl, err := c.Auth.ParseTokenTTL()
	if err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("auth.token_ttl must not be negative")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{Currency: "USD"},
		Store: StoreConfig{
			Type: "sqlite",
			Path: "./tradejournal.db",
		},
		Logging: LoggingConfig{Level: "warn"},
		Auth: AuthConfig{
			Enabled:  true,
			TokenTTL: "720h",
		},
	}
}
