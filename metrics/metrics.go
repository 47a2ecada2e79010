// Package metrics derives performance figures from a trade list. Every
// function is pure and recomputes from scratch; nothing is cached.
//
// Ratios never return NaN or Inf: an empty denominator yields 0.
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Summary holds the headline numbers for a set of trades.
type Summary struct {
	Trades       int
	Wins         int
	Losses       int
	BreakEven    int
	WinRate      float64 // percent of decisive trades that won
	TotalWin     float64 // gross winning pnl, non-negative
	TotalLoss    float64 // gross losing pnl magnitude, non-negative
	TotalPnL     float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64
}

// Summarize computes the Summary of trades.
func Summarize(trades []ledger.Trade) Summary {
	var s Summary
	win, loss := decimal.Zero, decimal.Zero
	for _, t := range trades {
		s.Trades++
		switch t.Outcome {
		case ledger.Win:
			s.Wins++
			win = win.Add(t.Effect())
		case ledger.Loss:
			s.Losses++
			loss = loss.Sub(t.Effect())
		default:
			s.BreakEven++
		}
	}
	s.TotalWin = win.InexactFloat64()
	s.TotalLoss = loss.InexactFloat64()
	s.TotalPnL = win.Sub(loss).InexactFloat64()
	s.WinRate = percent(s.Wins, s.Wins+s.Losses)
	s.AvgWin = ratio(win, decimal.NewFromInt(int64(s.Wins)))
	s.AvgLoss = ratio(loss, decimal.NewFromInt(int64(s.Losses)))
	s.ProfitFactor = ratio(win, loss)
	return s
}

// WinRate is wins / (wins + losses) * 100. Break-even trades are ignored.
func WinRate(trades []ledger.Trade) float64 { return Summarize(trades).WinRate }

// ProfitFactor is gross win / gross loss, or 0 when there were no losses.
func ProfitFactor(trades []ledger.Trade) float64 { return Summarize(trades).ProfitFactor }

// TotalPnL is gross win minus gross loss.
func TotalPnL(trades []ledger.Trade) float64 { return Summarize(trades).TotalPnL }

// Distribution counts trades per outcome.
func Distribution(trades []ledger.Trade) map[ledger.Outcome]int {
	out := map[ledger.Outcome]int{ledger.Win: 0, ledger.Loss: 0, ledger.BreakEven: 0}
	for _, t := range trades {
		switch t.Outcome {
		case ledger.Win, ledger.Loss:
			out[t.Outcome]++
		default:
			out[ledger.BreakEven]++
		}
	}
	return out
}

// ROI returns cumulative trading pnl as a percent of the starting balance.
// The starting balance is total deposits, or the current balance when
// nothing was ever deposited. A non-positive starting balance gives 0.
func ROI(trades []ledger.Trade, deposits []ledger.Deposit, balance float64) float64 {
	start := StartingBalance(deposits, balance)
	if start.Sign() <= 0 {
		return 0
	}
	pnl := decimal.Zero
	for _, t := range trades {
		pnl = pnl.Add(t.Effect())
	}
	return pnl.Div(start).Mul(hundred).InexactFloat64()
}

// StartingBalance is the base ROI figures are measured against.
func StartingBalance(deposits []ledger.Deposit, balance float64) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deposits {
		total = total.Add(ledger.Dec(d.Amount))
	}
	if total.IsZero() {
		return ledger.Dec(balance)
	}
	return total
}

var hundred = decimal.NewFromInt(100)

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(d))).Mul(hundred).InexactFloat64()
}

func ratio(n, d decimal.Decimal) float64 {
	if d.IsZero() {
		return 0
	}
	return n.Div(d).InexactFloat64()
}
