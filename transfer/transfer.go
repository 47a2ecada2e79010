// Package transfer moves ledger snapshots in and out as portable files.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

// Version is written into every export.
const Version = "1.0"

// ErrInvalidImport means the document lacks the fields an import needs.
var ErrInvalidImport = errors.New("invalid import file: expected trades, deposits and a numeric balance")

// Export is the on-disk export document.
type Export struct {
	Trades         []ledger.Trade   `json:"trades"`
	Deposits       []ledger.Deposit `json:"deposits"`
	Balance        float64          `json:"balance"`
	JournalEntries []journal.Entry  `json:"journalEntries"`
	Reviews        []journal.Review `json:"reviews,omitempty"`
	ExportDate     string           `json:"exportDate"`
	ExportID       string           `json:"exportId"`
	Version        string           `json:"version"`
}

// Write encodes s as an indented export document stamped with now.
func Write(w io.Writer, s ledger.Snapshot, now time.Time) error {
	doc := Export{
		Trades:         nonNil(s.Trades),
		Deposits:       nonNil(s.Deposits),
		Balance:        s.Balance,
		JournalEntries: nonNil(s.JournalEntries),
		Reviews:        s.Reviews,
		ExportDate:     now.UTC().Format(time.RFC3339Nano),
		ExportID:       id.New(),
		Version:        Version,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Read decodes an export document. It checks only that trades and deposits
// are present and that balance is a number; nothing else about the shape is
// validated and the version is not inspected. On error nothing is returned
// to apply.
func Read(r io.Reader) (ledger.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if !present(raw, "trades") || !present(raw, "deposits") {
		return ledger.Snapshot{}, ErrInvalidImport
	}
	var balance float64
	if err := json.Unmarshal(raw["balance"], &balance); err != nil || !present(raw, "balance") {
		return ledger.Snapshot{}, ErrInvalidImport
	}

	var s ledger.Snapshot
	s.Balance = balance
	if err := json.Unmarshal(raw["trades"], &s.Trades); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("%w: trades: %v", ErrInvalidImport, err)
	}
	if err := json.Unmarshal(raw["deposits"], &s.Deposits); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("%w: deposits: %v", ErrInvalidImport, err)
	}
	if present(raw, "journalEntries") {
		if err := json.Unmarshal(raw["journalEntries"], &s.JournalEntries); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("%w: journalEntries: %v", ErrInvalidImport, err)
		}
	}
	if present(raw, "reviews") {
		if err := json.Unmarshal(raw["reviews"], &s.Reviews); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("%w: reviews: %v", ErrInvalidImport, err)
		}
	}
	for i := range s.Trades {
		if s.Trades[i].Tags == nil {
			s.Trades[i].Tags = []string{}
		}
	}
	return s, nil
}

// present treats an explicit null like a missing key.
func present(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && string(v) != "null"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
