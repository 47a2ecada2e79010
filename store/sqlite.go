package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
)

// SQLite keeps the ledger in a SQLite database.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLite(path string, log *slog.Logger) (*SQLite, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, log: log}, nil
}

// Load reads every collection. A collection that cannot be read is logged
// and comes back empty; Load itself does not fail on corrupt data.
func (s *SQLite) Load() (ledger.Snapshot, error) {
	var snap ledger.Snapshot
	var err error

	if snap.Trades, err = s.loadTrades(); err != nil {
		s.log.Error("load trades, using empty", "error", err)
		snap.Trades = nil
	}
	if snap.Deposits, err = s.loadDeposits(); err != nil {
		s.log.Error("load deposits, using empty", "error", err)
		snap.Deposits = nil
	}
	if snap.Balance, err = s.loadBalance(); err != nil {
		s.log.Error("load balance, using zero", "error", err)
		snap.Balance = 0
	}
	if snap.JournalEntries, err = s.loadEntries(); err != nil {
		s.log.Error("load journal entries, using empty", "error", err)
		snap.JournalEntries = nil
	}
	if snap.Reviews, err = s.loadReviews(); err != nil {
		s.log.Error("load reviews, using empty", "error", err)
		snap.Reviews = nil
	}
	return snap, nil
}

// Save replaces all ledger tables in one transaction.
func (s *SQLite) Save(snap ledger.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := clearLedger(tx); err != nil {
		return err
	}

	for i, t := range snap.Trades {
		tags, err := encodeList(t.Tags)
		if err != nil {
			return err
		}
		images, err := encodeList(t.Images)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO trades
			(id, position, date, symbol, direction, position_size, notes, tags, outcome, pnl, images)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, t.Date, t.Symbol, string(t.Direction), t.PositionSize,
			t.Notes, tags, string(t.Outcome), t.PnL, images,
		); err != nil {
			return fmt.Errorf("insert trade %d: %w", t.ID, err)
		}
	}

	for i, d := range snap.Deposits {
		if _, err := tx.Exec(`
			INSERT INTO deposits (id, position, amount, date)
			VALUES (?, ?, ?, ?)`,
			d.ID, i, d.Amount, d.Date,
		); err != nil {
			return fmt.Errorf("insert deposit %d: %w", d.ID, err)
		}
	}

	for i, e := range snap.JournalEntries {
		tags, err := encodeList(e.Tags)
		if err != nil {
			return err
		}
		att, err := encodeList(e.Attachments)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO journal_entries
			(id, position, date, title, content, mood, tags, attachments)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Date, e.Title, e.Content, e.Mood, tags, att,
		); err != nil {
			return fmt.Errorf("insert journal entry %d: %w", e.ID, err)
		}
	}

	for i, r := range snap.Reviews {
		if _, err := tx.Exec(`
			INSERT INTO reviews
			(month, position, goals, successes, challenges, lessons, next_month, sentiment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Month, i, r.Goals, r.Successes, r.Challenges, r.Lessons, r.NextMonth, string(r.Sentiment),
		); err != nil {
			return fmt.Errorf("insert review %s: %w", r.Month, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO account (id, balance) VALUES (1, ?)`, snap.Balance); err != nil {
		return fmt.Errorf("write balance: %w", err)
	}

	return tx.Commit()
}

// Wipe empties the ledger tables. Settings are kept.
func (s *SQLite) Wipe() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if err := clearLedger(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func clearLedger(tx *sql.Tx) error {
	for _, table := range []string{"trades", "deposits", "journal_entries", "reviews", "account"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLite) loadTrades() ([]ledger.Trade, error) {
	rows, err := s.db.Query(`
		SELECT id, date, symbol, direction, position_size, notes, tags, outcome, pnl, images
		FROM trades
		ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Trade
	for rows.Next() {
		var (
			t            ledger.Trade
			dir, outcome string
			tags, images string
		)
		if err := rows.Scan(
			&t.ID, &t.Date, &t.Symbol, &dir, &t.PositionSize,
			&t.Notes, &tags, &outcome, &t.PnL, &images,
		); err != nil {
			return nil, err
		}
		t.Direction = ledger.Direction(dir)
		t.Outcome = ledger.Outcome(outcome)
		t.Tags = s.decodeList(tags, "trade tags")
		if t.Tags == nil {
			t.Tags = []string{}
		}
		t.Images = s.decodeList(images, "trade images")
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) loadDeposits() ([]ledger.Deposit, error) {
	rows, err := s.db.Query(`SELECT id, amount, date FROM deposits ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Deposit
	for rows.Next() {
		var d ledger.Deposit
		if err := rows.Scan(&d.ID, &d.Amount, &d.Date); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) loadBalance() (float64, error) {
	var b float64
	err := s.db.QueryRow(`SELECT balance FROM account WHERE id = 1`).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return b, err
}

func (s *SQLite) loadEntries() ([]journal.Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, date, title, content, mood, tags, attachments
		FROM journal_entries
		ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var (
			e         journal.Entry
			tags, att string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Title, &e.Content, &e.Mood, &tags, &att); err != nil {
			return nil, err
		}
		e.Tags = s.decodeList(tags, "journal tags")
		if e.Tags == nil {
			e.Tags = []string{}
		}
		e.Attachments = s.decodeList(att, "journal attachments")
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) loadReviews() ([]journal.Review, error) {
	rows, err := s.db.Query(`
		SELECT month, goals, successes, challenges, lessons, next_month, sentiment
		FROM reviews
		ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Review
	for rows.Next() {
		var (
			r         journal.Review
			sentiment string
		)
		if err := rows.Scan(&r.Month, &r.Goals, &r.Successes, &r.Challenges, &r.Lessons, &r.NextMonth, &sentiment); err != nil {
			return nil, err
		}
		r.Sentiment = journal.Sentiment(sentiment)
		out = append(out, r)
	}
	return out, rows.Err()
}

// encodeList stores a string list as a JSON array; nil becomes "null" so
// an absent list reads back as absent.
func encodeList(v []string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func (s *SQLite) decodeList(raw, what string) []string {
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.Error("corrupt list column, using empty", "column", what, "error", err)
		return nil
	}
	return v
}
