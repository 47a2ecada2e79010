package store

import (
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Memory keeps everything in process. Snapshots are stored encoded so a
// caller can never alias what was saved.
type Memory struct {
	data     []byte
	settings map[string]string
}

func NewMemory() *Memory {
	return &Memory{settings: map[string]string{}}
}

func (m *Memory) Load() (ledger.Snapshot, error) {
	var s ledger.Snapshot
	if m.data == nil {
		return s, nil
	}
	if err := json.Unmarshal(m.data, &s); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (m *Memory) Save(s ledger.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	m.data = b
	return nil
}

func (m *Memory) Wipe() error {
	m.data = nil
	return nil
}

func (m *Memory) Get(key string) (string, error) {
	v, ok := m.settings[key]
	if !ok {
		return "", ErrNoKey
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.settings[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	delete(m.settings, key)
	return nil
}

func (m *Memory) Close() error { return nil }
