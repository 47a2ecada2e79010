package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// EquityPoint is the running total after one trade.
type EquityPoint struct {
	Trade  int // 1-based position in the list
	Date   string
	Equity float64
}

// EquityCurve walks trades in list order and returns the cumulative
// balance effect after each one. Break-even trades produce a flat step.
func EquityCurve(trades []ledger.Trade) []EquityPoint {
	out := make([]EquityPoint, 0, len(trades))
	run := decimal.Zero
	for i, t := range trades {
		run = run.Add(t.Effect())
		out = append(out, EquityPoint{Trade: i + 1, Date: t.Date, Equity: run.InexactFloat64()})
	}
	return out
}

// MaxDrawdown is the largest peak-to-trough fall of the equity curve,
// measured from a starting equity of zero. It is returned as a positive
// amount.
func MaxDrawdown(trades []ledger.Trade) float64 {
	run, peak, worst := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range trades {
		run = run.Add(t.Effect())
		if run.GreaterThan(peak) {
			peak = run
		}
		if dd := peak.Sub(run); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst.InexactFloat64()
}

// Streaks reports the longest and the current run of wins and losses.
type Streaks struct {
	LongestWin  int
	LongestLoss int
	CurrentWin  int
	CurrentLoss int
}

// ComputeStreaks scans trades in list order. A win extends the win run and
// resets the loss run, a loss does the converse, and a break-even resets
// both.
func ComputeStreaks(trades []ledger.Trade) Streaks {
	var s Streaks
	for _, t := range trades {
		switch t.Outcome {
		case ledger.Win:
			s.CurrentWin++
			s.CurrentLoss = 0
		case ledger.Loss:
			s.CurrentLoss++
			s.CurrentWin = 0
		default:
			s.CurrentWin, s.CurrentLoss = 0, 0
		}
		s.LongestWin = max(s.LongestWin, s.CurrentWin)
		s.LongestLoss = max(s.LongestLoss, s.CurrentLoss)
	}
	return s
}

// CalendarDay is the activity on one exact date.
type CalendarDay struct {
	Date   string
	PnL    float64
	Trades int // every trade on the day, break-even included
	Wins   int
	Losses int
}

// Calendar groups trades by their exact date string, in first-seen order.
func Calendar(trades []ledger.Trade) []CalendarDay {
	idx := map[string]int{}
	var days []CalendarDay
	sums := []decimal.Decimal{}
	for _, t := range trades {
		i, ok := idx[t.Date]
		if !ok {
			i = len(days)
			idx[t.Date] = i
			days = append(days, CalendarDay{Date: t.Date})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(t.Effect())
		days[i].Trades++
		switch t.Outcome {
		case ledger.Win:
			days[i].Wins++
		case ledger.Loss:
			days[i].Losses++
		}
	}
	for i := range days {
		days[i].PnL = sums[i].InexactFloat64()
	}
	return days
}
