package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Month is one row of the portfolio view: trading results and deposits for
// a calendar month.
type Month struct {
	Month     string
	Trades    int // every trade, break-even included
	Wins      int
	Losses    int
	BreakEven int
	PnL       float64
	Deposits  float64
}

// WinRate over the month's decisive trades.
func (m Month) WinRate() float64 { return percent(m.Wins, m.Wins+m.Losses) }

// MonthlyPerformance merges trades and deposits by YYYY-MM and returns the
// months in ascending order.
func MonthlyPerformance(trades []ledger.Trade, deposits []ledger.Deposit) []Month {
	byKey := map[string]*Month{}
	pnl := map[string]decimal.Decimal{}
	dep := map[string]decimal.Decimal{}
	get := func(k string) *Month {
		m, ok := byKey[k]
		if !ok {
			m = &Month{Month: k}
			byKey[k] = m
		}
		return m
	}

	for _, t := range trades {
		k := prefix(t.Date, 7)
		m := get(k)
		m.Trades++
		switch t.Outcome {
		case ledger.Win:
			m.Wins++
		case ledger.Loss:
			m.Losses++
		default:
			m.BreakEven++
		}
		pnl[k] = pnl[k].Add(t.Effect())
	}
	for _, d := range deposits {
		k := prefix(d.Date, 7)
		get(k)
		dep[k] = dep[k].Add(ledger.Dec(d.Amount))
	}

	out := make([]Month, 0, len(byKey))
	for k, m := range byKey {
		m.PnL = pnl[k].InexactFloat64()
		m.Deposits = dep[k].InexactFloat64()
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// GrowthPoint is the account after a month, measured from the starting
// balance.
type GrowthPoint struct {
	Month         string
	Balance       float64
	CumulativePnL float64
	MonthlyPnL    float64
	MonthlyROI    float64
	ROI           float64
}

// Growth accumulates monthly pnl on top of the starting balance (see
// StartingBalance). Deposits do not move the curve; it tracks trading
// returns only.
func Growth(months []Month, start decimal.Decimal) []GrowthPoint {
	out := make([]GrowthPoint, 0, len(months))
	cum := decimal.Zero
	for _, m := range months {
		monthly := ledger.Dec(m.PnL)
		cum = cum.Add(monthly)
		p := GrowthPoint{
			Month:         m.Month,
			Balance:       start.Add(cum).InexactFloat64(),
			CumulativePnL: cum.InexactFloat64(),
			MonthlyPnL:    m.PnL,
		}
		if start.Sign() > 0 {
			p.ROI = cum.Div(start).Mul(hundred).InexactFloat64()
			p.MonthlyROI = monthly.Div(start).Mul(hundred).InexactFloat64()
		}
		out = append(out, p)
	}
	return out
}

// MonthlyROI is the pnl of trades dated in month (YYYY-MM) as a percentage
// of the starting balance. A non-positive starting balance gives 0.
func MonthlyROI(trades []ledger.Trade, deposits []ledger.Deposit, balance float64, month string) float64 {
	start := StartingBalance(deposits, balance)
	if start.Sign() <= 0 {
		return 0
	}
	pnl := decimal.Zero
	for _, t := range trades {
		if prefix(t.Date, 7) == month {
			pnl = pnl.Add(t.Effect())
		}
	}
	return pnl.Div(start).Mul(hundred).InexactFloat64()
}
