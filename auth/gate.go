package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Setting keys.
const (
	KeyPasswordHash = "password-hash"
	KeyRecoveryHash = "recovery-hash"
	KeyToken        = "auth-token"
)

var (
	ErrNotConfigured       = errors.New("no password has been set")
	ErrAlreadyConfigured   = errors.New("a password is already set")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")
	ErrEmptyPassword       = errors.New("password must not be empty")
)

// Settings is where the gate keeps its hashes and the current token. A
// missing key is reported with the sentinel passed to NewGate.
type Settings interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Gate ties the hashing primitives to persisted settings.
type Gate struct {
	settings Settings
	missing  error
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewGate builds a gate. missing is the error settings return for an
// absent key.
func NewGate(s Settings, missing error, ttl time.Duration, log *slog.Logger) *Gate {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gate{settings: s, missing: missing, ttl: ttl, now: time.Now, log: log}
}

// SetClock overrides the time source.
func (g *Gate) SetClock(now func() time.Time) { g.now = now }

// IsConfigured reports whether a password exists.
func (g *Gate) IsConfigured() (bool, error) {
	_, err := g.get(KeyPasswordHash)
	if errors.Is(err, ErrNotConfigured) {
		return false, nil
	}
	return err == nil, err
}

// Setup stores the first password and returns a fresh recovery code. The
// code is shown once; only its hash is kept.
func (g *Gate) Setup(password string) (string, error) {
	ok, err := g.IsConfigured()
	if err != nil {
		return "", err
	}
	if ok {
		return "", ErrAlreadyConfigured
	}
	return g.setCredentials(password)
}

// Login checks the password and stores a new session token.
func (g *Gate) Login(password string) (string, error) {
	hash, err := g.get(KeyPasswordHash)
	if err != nil {
		return "", err
	}
	if !VerifyPassword(password, hash) {
		g.log.Warn("login rejected")
		return "", ErrInvalidPassword
	}
	token := GenerateToken(g.now())
	if err := g.settings.Set(KeyToken, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Authenticated reports whether a valid, unexpired token is stored. When
// no password is configured the gate is open.
func (g *Gate) Authenticated() (bool, error) {
	ok, err := g.IsConfigured()
	if err != nil || !ok {
		return !ok && err == nil, err
	}
	token, err := g.get(KeyToken)
	if errors.Is(err, ErrNotConfigured) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ValidateToken(token, g.now(), g.ttl), nil
}

// Logout forgets the current token.
func (g *Gate) Logout() error {
	return g.settings.Delete(KeyToken)
}

// Recover replaces the password when code matches the stored recovery
// hash. A new recovery code is issued and any session is dropped.
func (g *Gate) Recover(code, newPassword string) (string, error) {
	hash, err := g.get(KeyRecoveryHash)
	if err != nil {
		return "", err
	}
	if !VerifyRecoveryCode(code, hash) {
		g.log.Warn("recovery code rejected")
		return "", ErrInvalidRecoveryCode
	}
	next, err := g.setCredentials(newPassword)
	if err != nil {
		return "", err
	}
	return next, g.Logout()
}

// ChangePassword replaces the password after checking the current one.
func (g *Gate) ChangePassword(current, next string) error {
	hash, err := g.get(KeyPasswordHash)
	if err != nil {
		return err
	}
	if !VerifyPassword(current, hash) {
		return ErrInvalidPassword
	}
	if next == "" {
		return ErrEmptyPassword
	}
	return g.settings.Set(KeyPasswordHash, HashPassword(next))
}

func (g *Gate) setCredentials(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	code := GenerateRecoveryCode()
	if err := g.settings.Set(KeyPasswordHash, HashPassword(password)); err != nil {
		return "", fmt.Errorf("store password: %w", err)
	}
	if err := g.settings.Set(KeyRecoveryHash, HashRecoveryCode(code)); err != nil {
		return "", fmt.Errorf("store recovery code: %w", err)
	}
	return code, nil
}

// get maps the settings' missing-key error to ErrNotConfigured.
func (g *Gate) get(key string) (string, error) {
	v, err := g.settings.Get(key)
	if g.missing != nil && errors.Is(err, g.missing) {
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}
