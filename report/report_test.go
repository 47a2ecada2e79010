package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
)

func snapshot() ledger.Snapshot {
	return ledger.Snapshot{
		Trades: []ledger.Trade{
			{ID: 1, Date: "2024-01-02", Symbol: "EURUSD", Direction: ledger.Long, Outcome: ledger.Win, PnL: 100, Tags: []string{"scalp"}},
			{ID: 2, Date: "2024-01-03", Symbol: "EURUSD", Direction: ledger.Short, Outcome: ledger.Loss, PnL: 40, Tags: []string{}},
			{ID: 3, Date: "2024-02-01", Symbol: "GBPUSD", Direction: ledger.Long, Outcome: ledger.Win, PnL: 25, Tags: []string{}},
		},
		Deposits: []ledger.Deposit{{ID: 4, Amount: 1000, Date: "2024-01-01"}},
		Balance:  1085,
		Reviews: []journal.Review{
			{Month: "2024-01", Lessons: "cut losers", Sentiment: journal.Positive},
		},
	}
}

func TestMoney(t *testing.T) {
	t.Parallel()

	usd := NewMoney("usd")
	assert.Equal(t, "$1,234.50", usd.Format(1234.5))
	assert.Equal(t, "-$40.00", usd.Format(-40))
	assert.Equal(t, "$0.00", usd.Format(0))
	assert.Equal(t, "+$125.00", usd.Signed(125))
	assert.Equal(t, "-$40.00", usd.Signed(-40))
	assert.Equal(t, "$0.10", usd.Format(0.1), "no float noise")

	assert.Contains(t, NewMoney("JPY").Format(1234.5), "1,235")
	assert.Equal(t, usd, NewMoney("nope"), "unknown codes fall back to USD")

	assert.Equal(t, "66.67%", Percent(200.0/3))
	assert.Equal(t, "3.13", Ratio(3.125))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	r := Build(snapshot(), "USD", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, 1000.0, r.TotalDeposits)
	assert.Equal(t, 85.0, r.TradingPnL)
	assert.Zero(t, r.Drift)
	assert.Equal(t, 3, r.Summary.Trades)
	assert.Len(t, r.Months, 2)
	assert.Len(t, r.Growth, 2)
	assert.Equal(t, 40.0, r.MaxDrawdown)
	assert.Equal(t, 1, r.Streaks.CurrentWin)
	assert.Equal(t, "2024-03", r.Month)
	assert.Zero(t, r.MonthlyROI)

	feb := Build(snapshot(), "USD", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02", feb.Month)
	assert.InDelta(t, 2.5, feb.MonthlyROI, 1e-9)
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	md, err := Build(snapshot(), "USD", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)).Markdown()
	require.NoError(t, err)

	for _, want := range []string{
		"_Generated 2024-03-01 09:30_",
		"| Balance | $1,085.00 |",
		"| Trading P&L | +$85.00 |",
		"| Monthly ROI (2024-03) | 0.00% |",
		"Win rate: **66.67%**",
		"| 2024-01 | 2 | 50.00% | +$60.00 | $1,000.00 |",
		"| 2024-02 | 1 | 100.00% | +$25.00 | $0.00 |",
		"| EURUSD | 2 | 50.00% | +$60.00 |",
		"| scalp | 1 | 100.00% | +$100.00 |",
		"## Review 2024-01 (positive)",
		"**Lessons:** cut losers",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "Stored balance differs")
	assert.NotContains(t, md, "**Goals:**")
}

func TestMarkdownShowsDrift(t *testing.T) {
	t.Parallel()

	s := snapshot()
	s.Balance = 1000
	r := Build(s, "USD", time.Now())
	assert.Zero(t, r.TradingPnL, "balance less deposits, as the ledger reports it")
	assert.Equal(t, -85.0, r.Drift)

	md, err := r.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "| Trading P&L | $0.00 |")
	assert.Contains(t, md, "by -$85.00")
}

func TestMarkdownEmpty(t *testing.T) {
	t.Parallel()

	md, err := Build(ledger.Snapshot{}, "EUR", time.Now()).Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "Trades: **0**")
	assert.Contains(t, md, "Current streak: none")
	assert.NotContains(t, md, "## Monthly")
	assert.NotContains(t, md, "## By symbol")
}

func TestPretty(t *testing.T) {
	t.Parallel()

	out, err := Pretty("# Title\n\nbody text\n")
	require.NoError(t, err)
	assert.Contains(t, out, "body")
}

func TestHTML(t *testing.T) {
	t.Parallel()

	out, err := HTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>2</td>")
}

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	tr := ledger.Trade{
		ID: 7, Date: "2024-01-02", Symbol: "EURUSD", Direction: ledger.Short,
		PositionSize: 1.5, Outcome: ledger.Loss, PnL: 40,
		Tags: []string{"news", "late entry"}, Notes: "  chased it  ",
	}
	want := strings.Join([]string{
		"** 2024-01-02 EURUSD LOSS (7) :news:late_entry:",
		":PROPERTIES:",
		":TRADE_ID: 7",
		":DATE: 2024-01-02",
		":SYMBOL: EURUSD",
		":DIRECTION: short",
		":SIZE: 1.50",
		":OUTCOME: loss",
		":PNL: 40.00",
		":EFFECT: -40.00",
		":END:",
		"",
		"chased it",
		"",
	}, "\n")
	assert.Equal(t, want, FormatTradeOrg(tr))

	both := FormatTradesOrg([]ledger.Trade{tr, {ID: 8, Outcome: ledger.BreakEven, Tags: []string{" "}}})
	assert.Contains(t, both, "chased it\n\n** ")
	assert.Contains(t, both, "BE (8)\n:PROPERTIES:")
}

func TestFormatEntryOrg(t *testing.T) {
	t.Parallel()

	e := journal.Entry{ID: 3, Date: "2024-01-05T10:00:00Z", Content: "calm day", Mood: "good", Tags: []string{"mindset"}}
	out := FormatEntryOrg(e)
	assert.True(t, strings.HasPrefix(out, "** (untitled) :mindset:\n"))
	assert.Contains(t, out, ":ENTRY_ID: 3\n")
	assert.Contains(t, out, ":CREATED: [2024-01-05]\n")
	assert.Contains(t, out, ":MOOD: good\n")
	assert.Contains(t, out, "\ncalm day\n")

	assert.Equal(t, 2, strings.Count(FormatEntriesOrg([]journal.Entry{e, e}), ":ENTRY_ID: 3"))
}
