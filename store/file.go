package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Document keys. Each collection sits under its own key so that one corrupt
// collection does not take the others down with it.
const (
	keyTrades   = "trades"
	keyDeposits = "deposits"
	keyBalance  = "balance"
	keyEntries  = "journalEntries"
	keyReviews  = "reviews"
	keySettings = "settings"
)

// File stores everything in one JSON document on disk.
type File struct {
	path string
	log  *slog.Logger
}

func NewFile(path string, log *slog.Logger) *File {
	if log == nil {
		log = slog.Default()
	}
	return &File{path: path, log: log}
}

// Load reads the snapshot. A missing file is an empty ledger. A collection
// that fails to decode is logged and left empty.
func (f *File) Load() (ledger.Snapshot, error) {
	var s ledger.Snapshot
	doc, err := f.read()
	if err != nil {
		return s, err
	}
	decode(f, doc, keyTrades, &s.Trades)
	decode(f, doc, keyDeposits, &s.Deposits)
	decode(f, doc, keyBalance, &s.Balance)
	decode(f, doc, keyEntries, &s.JournalEntries)
	decode(f, doc, keyReviews, &s.Reviews)
	return s, nil
}

func (f *File) Save(s ledger.Snapshot) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	for k, v := range map[string]any{
		keyTrades:   s.Trades,
		keyDeposits: s.Deposits,
		keyBalance:  s.Balance,
		keyEntries:  s.JournalEntries,
		keyReviews:  s.Reviews,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		doc[k] = b
	}
	return f.write(doc)
}

// Wipe drops ledger data and keeps settings.
func (f *File) Wipe() error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	for _, k := range []string{keyTrades, keyDeposits, keyBalance, keyEntries, keyReviews} {
		delete(doc, k)
	}
	return f.write(doc)
}

func (f *File) Get(key string) (string, error) {
	settings, err := f.settings()
	if err != nil {
		return "", err
	}
	v, ok := settings[key]
	if !ok {
		return "", ErrNoKey
	}
	return v, nil
}

func (f *File) Set(key, value string) error {
	return f.updateSettings(func(m map[string]string) { m[key] = value })
}

func (f *File) Delete(key string) error {
	return f.updateSettings(func(m map[string]string) { delete(m, key) })
}

func (f *File) Close() error { return nil }

func (f *File) settings() (map[string]string, error) {
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	decode(f, doc, keySettings, &m)
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (f *File) updateSettings(fn func(map[string]string)) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	m := map[string]string{}
	decode(f, doc, keySettings, &m)
	if m == nil {
		m = map[string]string{}
	}
	fn(m)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	doc[keySettings] = b
	return f.write(doc)
}

// read returns the raw document. Missing or unparsable files read as empty;
// an unparsable file is logged since the next write will replace it.
func (f *File) read() (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		f.log.Error("corrupt store file, treating as empty", "path", f.path, "error", err)
		return map[string]json.RawMessage{}, nil
	}
	return doc, nil
}

// decode fills into from doc[key]. On failure into keeps its zero value.
func decode[T any](f *File, doc map[string]json.RawMessage, key string, into *T) {
	raw, ok := doc[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		f.log.Error("corrupt collection, using empty", "key", key, "path", f.path, "error", err)
		return
	}
	*into = v
}

// write replaces the file atomically via a temp file in the same directory.
func (f *File) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
