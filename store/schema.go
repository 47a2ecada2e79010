package store

import (
	"database/sql"
	"fmt"
)

// Schema is applied on every open. Rows are keyed by position, which keeps
// list order for the analytics; record ids are plain indexed columns so a
// snapshot with repeated ids still saves.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	date TEXT NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	position_size REAL NOT NULL,
	notes TEXT NOT NULL,
	tags TEXT NOT NULL,
	outcome TEXT NOT NULL,
	pnl REAL NOT NULL,
	images TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deposits (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	amount REAL NOT NULL,
	date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL,
	date TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	mood TEXT NOT NULL,
	tags TEXT NOT NULL,
	attachments TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	position INTEGER PRIMARY KEY,
	month TEXT NOT NULL,
	goals TEXT NOT NULL,
	successes TEXT NOT NULL,
	challenges TEXT NOT NULL,
	lessons TEXT NOT NULL,
	next_month TEXT NOT NULL,
	sentiment TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS account (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	balance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_record ON trades(id);
CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
CREATE INDEX IF NOT EXISTS idx_deposits_record ON deposits(id);
CREATE INDEX IF NOT EXISTS idx_journal_entries_record ON journal_entries(id);
CREATE INDEX IF NOT EXISTS idx_reviews_month ON reviews(month);
`

// positionTables lists the tables keyed by position and the columns they
// share with the earlier id-keyed layout.
var positionTables = []struct {
	name    string
	columns string
}{
	{"trades", "position, id, date, symbol, direction, position_size, notes, tags, outcome, pnl, images"},
	{"deposits", "position, id, amount, date"},
	{"journal_entries", "position, id, date, title, content, mood, tags, attachments"},
	{"reviews", "position, month, goals, successes, challenges, lessons, next_month, sentiment"},
}

// migrate applies Schema and rebuilds any table still keyed by record id
// or month, copying its rows across.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var stale []int
	for i, t := range positionTables {
		pk, err := primaryKey(db, t.name)
		if err != nil {
			return err
		}
		if pk != "position" {
			stale = append(stale, i)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, i := range stale {
		name := positionTables[i].name
		if _, err := tx.Exec("ALTER TABLE " + name + " RENAME TO " + name + "_old"); err != nil {
			return fmt.Errorf("rename %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	for _, i := range stale {
		t := positionTables[i]
		copyRows := "INSERT INTO " + t.name + " (" + t.columns + ") SELECT " + t.columns + " FROM " + t.name + "_old"
		if _, err := tx.Exec(copyRows); err != nil {
			return fmt.Errorf("copy %s: %w", t.name, err)
		}
		if _, err := tx.Exec("DROP TABLE " + t.name + "_old"); err != nil {
			return fmt.Errorf("drop old %s: %w", t.name, err)
		}
	}
	// indexes named in Schema went with the renamed tables
	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return tx.Commit()
}

func primaryKey(db *sql.DB, table string) (string, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return "", fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var key string
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return "", fmt.Errorf("table info %s: %w", table, err)
		}
		if pk == 1 {
			key = name
		}
	}
	return key, rows.Err()
}
