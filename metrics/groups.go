package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Untagged is the group trades without tags fall into.
const Untagged = "Untagged"

// Group aggregates the trades sharing one key.
type Group struct {
	Key       string
	PnL       float64
	Trades    int // wins and losses only
	BreakEven int
	Wins      int
	Losses    int
}

// WinRate of the group's decisive trades.
func (g Group) WinRate() float64 { return percent(g.Wins, g.Wins+g.Losses) }

// Monthly groups by the YYYY-MM prefix of the trade date.
func Monthly(trades []ledger.Trade) []Group {
	return groupBy(trades, func(t ledger.Trade) []string { return []string{prefix(t.Date, 7)} })
}

// Daily groups by the YYYY-MM-DD prefix of the trade date.
func Daily(trades []ledger.Trade) []Group {
	return groupBy(trades, func(t ledger.Trade) []string { return []string{prefix(t.Date, 10)} })
}

// BySymbol groups by instrument.
func BySymbol(trades []ledger.Trade) []Group {
	return groupBy(trades, func(t ledger.Trade) []string { return []string{t.Symbol} })
}

// ByTag groups by strategy tag. A trade counts once for each of its tags;
// a trade with no tags counts under Untagged.
func ByTag(trades []ledger.Trade) []Group {
	return groupBy(trades, func(t ledger.Trade) []string {
		if len(t.Tags) == 0 {
			return []string{Untagged}
		}
		return t.Tags
	})
}

// groupBy aggregates in a single pass. Groups come back in the order their
// key was first seen, so trades sharing a key keep list order.
func groupBy(trades []ledger.Trade, keys func(ledger.Trade) []string) []Group {
	idx := map[string]int{}
	var groups []Group
	var sums []decimal.Decimal
	for _, t := range trades {
		for _, k := range keys(t) {
			i, ok := idx[k]
			if !ok {
				i = len(groups)
				idx[k] = i
				groups = append(groups, Group{Key: k})
				sums = append(sums, decimal.Zero)
			}
			sums[i] = sums[i].Add(t.Effect())
			g := &groups[i]
			switch t.Outcome {
			case ledger.Win:
				g.Wins++
				g.Trades++
			case ledger.Loss:
				g.Losses++
				g.Trades++
			default:
				g.BreakEven++
			}
		}
	}
	for i := range groups {
		groups[i].PnL = sums[i].InexactFloat64()
	}
	return groups
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
