// Package store persists ledger snapshots and the small key-value settings
// the auth gate needs.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/tradejournal/ledger"
)

// ErrNoKey is returned by KV.Get when a key is absent.
var ErrNoKey = errors.New("key not set")

// KV is string settings storage.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store is a ledger persister that also keeps settings. Wipe clears ledger
// data only; settings such as the password hash survive it.
type Store interface {
	ledger.Persister
	KV
	Close() error
}

// Kind names a backend.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// Open returns the backend of the given kind at path.
func Open(kind Kind, path string, log *slog.Logger) (Store, error) {
	if log == nil {
		log = slog.Default()
	}
	switch kind {
	case KindFile:
		return NewFile(path, log), nil
	case KindSQLite:
		return NewSQLite(path, log)
	case KindMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store type %q", kind)
}
