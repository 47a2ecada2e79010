package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Filter selects trades for the history view. Zero values match everything.
type Filter struct {
	Search    string // case-insensitive match on symbol, notes or any tag
	Direction Direction
	Outcome   Outcome
}

// SortField names a column trades can be ordered by.
type SortField string

const (
	SortDate    SortField = "date"
	SortSymbol  SortField = "symbol"
	SortPnL     SortField = "pnl"
	SortSize    SortField = "size"
	SortOutcome SortField = "outcome"
	SortNone    SortField = ""
)

// ParseSortField validates a sort column name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case SortDate, SortSymbol, SortPnL, SortSize, SortOutcome, SortNone:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Trade) bool {
	if f.Direction != "" && t.Direction != f.Direction {
		return false
	}
	if f.Outcome != "" && t.Outcome != f.Outcome {
		return false
	}
	term := strings.ToLower(f.Search)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Symbol), term) ||
		strings.Contains(strings.ToLower(t.Notes), term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Query filters trades and orders them by field. Sorting is stable, so
// trades with equal keys keep their list order. SortNone leaves list order.
func Query(trades []Trade, f Filter, field SortField, desc bool) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	if field == SortNone {
		return out
	}

	less := func(a, b Trade) bool {
		switch field {
		case SortSymbol:
			return a.Symbol < b.Symbol
		case SortPnL:
			return a.PnL < b.PnL
		case SortSize:
			return a.PositionSize < b.PositionSize
		case SortOutcome:
			return a.Outcome < b.Outcome
		default:
			return a.Date < b.Date
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
