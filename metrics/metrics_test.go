package metrics

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/ledger"
)

func tr(date, symbol string, o ledger.Outcome, pnl float64, tags ...string) ledger.Trade {
	return ledger.Trade{Date: date, Symbol: symbol, Outcome: o, PnL: pnl, Tags: tags}
}

func outcomes(os ...ledger.Outcome) []ledger.Trade {
	out := make([]ledger.Trade, len(os))
	for i, o := range os {
		out[i] = tr("2024-01-01", "X", o, 1)
	}
	return out
}

func TestEmptyTradesAreZero(t *testing.T) {
	t.Parallel()

	for _, trades := range [][]ledger.Trade{nil, {}} {
		s := Summarize(trades)
		assert.Equal(t, Summary{}, s)
		assert.Zero(t, WinRate(trades))
		assert.Zero(t, ProfitFactor(trades))
		assert.Zero(t, TotalPnL(trades))
		assert.Zero(t, ROI(trades, nil, 0))
		assert.Zero(t, MaxDrawdown(trades))
		assert.Empty(t, EquityCurve(trades))
		assert.Empty(t, Monthly(trades))
		assert.Equal(t, Streaks{}, ComputeStreaks(trades))
	}
}

func TestWinRateExcludesBreakEven(t *testing.T) {
	t.Parallel()

	trades := outcomes(ledger.Win, ledger.BreakEven, ledger.Loss, ledger.BreakEven, ledger.Win, ledger.BreakEven)
	assert.InDelta(t, 66.67, WinRate(trades), 0.01)

	assert.Zero(t, WinRate(outcomes(ledger.BreakEven, ledger.BreakEven)))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-01-01", "A", ledger.Win, 100),
		tr("2024-01-02", "A", ledger.Loss, -40), // sign is ignored
		tr("2024-01-03", "A", ledger.Win, 50),
		tr("2024-01-04", "A", ledger.Loss, 10),
		tr("2024-01-05", "A", ledger.BreakEven, 7),
	}
	s := Summarize(trades)

	assert.Equal(t, 5, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.BreakEven)
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, 150.0, s.TotalWin)
	assert.Equal(t, 50.0, s.TotalLoss)
	assert.Equal(t, 100.0, s.TotalPnL)
	assert.Equal(t, 75.0, s.AvgWin)
	assert.Equal(t, 25.0, s.AvgLoss)
	assert.Equal(t, 3.0, s.ProfitFactor)
}

func TestProfitFactorWithoutLosses(t *testing.T) {
	t.Parallel()

	pf := ProfitFactor([]ledger.Trade{tr("2024-01-01", "A", ledger.Win, 10)})
	assert.Zero(t, pf)
	assert.False(t, math.IsInf(pf, 0))
}

func TestEquityCurve(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-01-01", "A", ledger.Win, 100),
		tr("2024-01-02", "A", ledger.Loss, 40),
		tr("2024-01-03", "A", ledger.BreakEven, 0),
		tr("2024-01-04", "A", ledger.Win, 25),
	}
	curve := EquityCurve(trades)
	require.Len(t, curve, 4)

	var got []float64
	for _, p := range curve {
		got = append(got, p.Equity)
	}
	assert.Equal(t, []float64{100, 60, 60, 85}, got)
	assert.Equal(t, 4, curve[3].Trade)
	assert.Equal(t, "2024-01-04", curve[3].Date)
}

func TestEquityCurveFollowsListOrder(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-02-01", "A", ledger.Loss, 5),
		tr("2024-01-01", "A", ledger.Win, 10),
	}
	curve := EquityCurve(trades)
	assert.Equal(t, -5.0, curve[0].Equity)
	assert.Equal(t, 5.0, curve[1].Equity)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("d", "A", ledger.Win, 100),
		tr("d", "A", ledger.Loss, 30),
		tr("d", "A", ledger.Loss, 50),
		tr("d", "A", ledger.Win, 200),
		tr("d", "A", ledger.Loss, 60),
	}
	assert.Equal(t, 80.0, MaxDrawdown(trades))

	assert.Equal(t, 10.0, MaxDrawdown([]ledger.Trade{tr("d", "A", ledger.Loss, 10)}))
}

func TestStreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		trades []ledger.Trade
		want   Streaks
	}{
		{
			name:   "break-even resets both",
			trades: outcomes(ledger.Win, ledger.Win, ledger.Loss, ledger.BreakEven, ledger.Win, ledger.Win, ledger.Win),
			want:   Streaks{LongestWin: 3, LongestLoss: 1, CurrentWin: 3},
		},
		{
			name:   "longest is not the last",
			trades: outcomes(ledger.Loss, ledger.Loss, ledger.Loss, ledger.Win, ledger.Loss),
			want:   Streaks{LongestWin: 1, LongestLoss: 3, CurrentLoss: 1},
		},
		{
			name:   "trailing break-even",
			trades: outcomes(ledger.Win, ledger.Win, ledger.BreakEven),
			want:   Streaks{LongestWin: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreaks(tt.trades))
		})
	}
}

func TestMonthlyAndDaily(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-02-10", "A", ledger.Win, 100),
		tr("2024-01-05", "A", ledger.Loss, 30),
		tr("2024-02-10", "A", ledger.BreakEven, 0),
		tr("2024-02-11", "A", ledger.Loss, 20),
	}

	months := Monthly(trades)
	require.Len(t, months, 2)
	assert.Equal(t, Group{Key: "2024-02", PnL: 80, Trades: 2, BreakEven: 1, Wins: 1, Losses: 1}, months[0])
	assert.Equal(t, Group{Key: "2024-01", PnL: -30, Trades: 1, Losses: 1}, months[1])
	assert.Equal(t, 50.0, months[0].WinRate())

	days := Daily(trades)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-02-10", days[0].Key)
	assert.Equal(t, 1, days[0].Trades, "break-even excluded from trade count")
	assert.Equal(t, 1, days[0].BreakEven)
	assert.Equal(t, 100.0, days[0].PnL)
}

func TestMonthlyUsesStringPrefix(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-03-01T10:00:00Z", "A", ledger.Win, 1),
		tr("2024-03", "A", ledger.Win, 1),
		tr("24", "A", ledger.Win, 1),
	}
	months := Monthly(trades)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-03", months[0].Key)
	assert.Equal(t, 2, months[0].Trades)
	assert.Equal(t, "24", months[1].Key)
}

func TestBySymbolAndTag(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-01-01", "EURUSD", ledger.Win, 10, "breakout", "london"),
		tr("2024-01-02", "XAUUSD", ledger.Loss, 4),
		tr("2024-01-03", "EURUSD", ledger.Loss, 3, "london"),
	}

	sym := BySymbol(trades)
	require.Len(t, sym, 2)
	assert.Equal(t, "EURUSD", sym[0].Key)
	assert.Equal(t, 7.0, sym[0].PnL)
	assert.Equal(t, 2, sym[0].Trades)

	tags := ByTag(trades)
	require.Len(t, tags, 3)
	assert.Equal(t, Group{Key: "breakout", PnL: 10, Trades: 1, Wins: 1}, tags[0])
	assert.Equal(t, Group{Key: "london", PnL: 7, Trades: 2, Wins: 1, Losses: 1}, tags[1])
	assert.Equal(t, Group{Key: Untagged, PnL: -4, Trades: 1, Losses: 1}, tags[2])
}

func TestCalendar(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-01-02", "A", ledger.Win, 10),
		tr("2024-01-02", "A", ledger.BreakEven, 99),
		tr("2024-01-03", "A", ledger.Loss, 4),
		tr("2024-01-02", "A", ledger.Loss, 1),
	}
	days := Calendar(trades)
	require.Len(t, days, 2)
	assert.Equal(t, CalendarDay{Date: "2024-01-02", PnL: 9, Trades: 3, Wins: 1, Losses: 1}, days[0])
	assert.Equal(t, CalendarDay{Date: "2024-01-03", PnL: -4, Trades: 1, Losses: 1}, days[1])
}

func TestROI(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{tr("2024-01-01", "A", ledger.Win, 150), tr("2024-01-02", "A", ledger.Loss, 50)}

	deposits := []ledger.Deposit{{Amount: 600}, {Amount: 400}}
	assert.Equal(t, 10.0, ROI(trades, deposits, 1100))

	// no deposits: the current balance is the base
	assert.Equal(t, 20.0, ROI(trades, nil, 500))

	assert.Zero(t, ROI(trades, nil, 0))
	assert.Zero(t, ROI(trades, nil, -10))
}

func TestDistribution(t *testing.T) {
	t.Parallel()

	d := Distribution(outcomes(ledger.Win, ledger.BreakEven, ledger.Loss, ledger.Win))
	assert.Equal(t, map[ledger.Outcome]int{ledger.Win: 2, ledger.Loss: 1, ledger.BreakEven: 1}, d)
}

func TestMonthlyPerformanceAndGrowth(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-02-03", "A", ledger.Win, 100),
		tr("2024-01-10", "A", ledger.Loss, 50),
		tr("2024-02-04", "A", ledger.BreakEven, 0),
	}
	deposits := []ledger.Deposit{{Amount: 1000, Date: "2024-01-01"}, {Amount: 500, Date: "2024-03-01"}}

	months := MonthlyPerformance(trades, deposits)
	require.Len(t, months, 3)
	assert.Equal(t, Month{Month: "2024-01", Trades: 1, Losses: 1, PnL: -50, Deposits: 1000}, months[0])
	assert.Equal(t, Month{Month: "2024-02", Trades: 2, Wins: 1, BreakEven: 1, PnL: 100}, months[1])
	assert.Equal(t, Month{Month: "2024-03", Deposits: 500}, months[2])
	assert.Equal(t, 100.0, months[1].WinRate())
	assert.Zero(t, months[2].WinRate())

	start := StartingBalance(deposits, 0)
	assert.True(t, start.Equal(decimal.NewFromInt(1500)))

	growth := Growth(months, start)
	require.Len(t, growth, 3)
	assert.Equal(t, 1450.0, growth[0].Balance)
	assert.Equal(t, 1550.0, growth[1].Balance)
	assert.Equal(t, 50.0, growth[2].CumulativePnL)
	assert.InDelta(t, 3.33, growth[2].ROI, 0.01)
	assert.InDelta(t, 6.67, growth[1].MonthlyROI, 0.01)
	assert.Zero(t, growth[2].MonthlyROI)

	for _, p := range Growth(months, decimal.Zero) {
		assert.Zero(t, p.ROI)
		assert.Zero(t, p.MonthlyROI)
	}
}

func TestMonthlyROI(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		tr("2024-02-03", "A", ledger.Win, 100),
		tr("2024-02-20", "A", ledger.Loss, 30),
		tr("2024-01-10", "A", ledger.Win, 500),
	}
	deposits := []ledger.Deposit{{Amount: 1000, Date: "2024-01-01"}}

	assert.InDelta(t, 7.0, MonthlyROI(trades, deposits, 0, "2024-02"), 1e-9)
	assert.Zero(t, MonthlyROI(trades, deposits, 0, "2024-03"))
	// no deposits: measured against the balance
	assert.InDelta(t, 3.5, MonthlyROI(trades, nil, 2000, "2024-02"), 1e-9)
	assert.Zero(t, MonthlyROI(trades, nil, 0, "2024-02"))
}
