// Package report renders the analytics views of a ledger as Markdown or
// Org-mode text.
package report

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/metrics"
)

// Report is everything the analytics page shows.
type Report struct {
	Generated time.Time
	Currency  string

	Balance       float64
	TotalDeposits float64
	TradingPnL    float64
	StartBalance  float64
	ROI           float64
	Month         string
	MonthlyROI    float64
	MaxDrawdown   float64
	Drift         float64

	Summary  metrics.Summary
	Streaks  metrics.Streaks
	Months   []metrics.Month
	Growth   []metrics.GrowthPoint
	Symbols  []metrics.Group
	Tags     []metrics.Group
	Reviews  []journal.Review
	Calendar []metrics.CalendarDay
}

// Build derives a Report from a snapshot. Reported figures use the stored
// balance, so TradingPnL is balance less deposits as the ledger reports it;
// Drift shows how far that is from the sum of trade effects. Monthly ROI is
// for the calendar month of now.
func Build(s ledger.Snapshot, currency string, now time.Time) Report {
	months := metrics.MonthlyPerformance(s.Trades, s.Deposits)
	start := metrics.StartingBalance(s.Deposits, s.Balance)

	deposits := decimal.Zero
	for _, d := range s.Deposits {
		deposits = deposits.Add(ledger.Dec(d.Amount))
	}
	pnl := ledger.Dec(metrics.TotalPnL(s.Trades))

	return Report{
		Generated:     now,
		Currency:      currency,
		Balance:       s.Balance,
		TotalDeposits: deposits.InexactFloat64(),
		TradingPnL:    ledger.Dec(s.Balance).Sub(deposits).InexactFloat64(),
		StartBalance:  start.InexactFloat64(),
		ROI:           metrics.ROI(s.Trades, s.Deposits, s.Balance),
		Month:         now.Format("2006-01"),
		MonthlyROI:    metrics.MonthlyROI(s.Trades, s.Deposits, s.Balance, now.Format("2006-01")),
		MaxDrawdown:   metrics.MaxDrawdown(s.Trades),
		Drift:         ledger.Dec(s.Balance).Sub(deposits).Sub(pnl).InexactFloat64(),
		Summary:       metrics.Summarize(s.Trades),
		Streaks:       metrics.ComputeStreaks(s.Trades),
		Months:        months,
		Growth:        metrics.Growth(months, start),
		Symbols:       metrics.BySymbol(s.Trades),
		Tags:          metrics.ByTag(s.Trades),
		Reviews:       s.Reviews,
		Calendar:      metrics.Calendar(s.Trades),
	}
}

func funcs(m Money) template.FuncMap {
	return template.FuncMap{
		"money":   m.Format,
		"signed":  m.Signed,
		"pct":     Percent,
		"ratio":   Ratio,
		"nonzero": nonZero,
	}
}

// nonZero reports whether x survives rounding to cents.
func nonZero(x float64) bool {
	return x >= 0.005 || x <= -0.005
}

// WriteMarkdown executes the analytics template into w.
func (r Report) WriteMarkdown(w io.Writer) error {
	t, err := template.New("report").Funcs(funcs(NewMoney(r.Currency))).Parse(MarkdownTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	if err := t.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Markdown returns the report as a string.
func (r Report) Markdown() (string, error) {
	var buf bytes.Buffer
	if err := r.WriteMarkdown(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Pretty styles Markdown for a terminal.
func Pretty(md string) (string, error) {
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return "", fmt.Errorf("style markdown: %w", err)
	}
	return out, nil
}

// HTML converts Markdown to an HTML fragment. Tables are rendered.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := conv.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

const MarkdownTemplate = `# Trading Journal Report

_Generated {{.Generated.Format "2006-01-02 15:04"}}_

## Account

| Figure | Value |
|---|---|
| Balance | {{money .Balance}} |
| Deposits | {{money .TotalDeposits}} |
| Trading P&L | {{signed .TradingPnL}} |
| Starting balance | {{money .StartBalance}} |
| ROI | {{pct .ROI}} |
| Monthly ROI ({{.Month}}) | {{pct .MonthlyROI}} |
| Max drawdown | {{money .MaxDrawdown}} |
{{- if nonzero .Drift}}

> Stored balance differs from deposits plus trading results by {{signed .Drift}}.
{{- end}}

## Performance

- Trades: **{{.Summary.Trades}}** ({{.Summary.Wins}} wins, {{.Summary.Losses}} losses, {{.Summary.BreakEven}} break-even)
- Win rate: **{{pct .Summary.WinRate}}**
- Profit factor: **{{ratio .Summary.ProfitFactor}}**
- Average win: {{money .Summary.AvgWin}}
- Average loss: {{money .Summary.AvgLoss}}
- Longest streaks: {{.Streaks.LongestWin}} wins, {{.Streaks.LongestLoss}} losses
- Current streak: {{if .Streaks.CurrentWin}}{{.Streaks.CurrentWin}} wins{{else if .Streaks.CurrentLoss}}{{.Streaks.CurrentLoss}} losses{{else}}none{{end}}
{{- if .Months}}

## Monthly

| Month | Trades | Win rate | P&L | Deposits |
|---|---:|---:|---:|---:|
{{- range .Months}}
| {{.Month}} | {{.Trades}} | {{pct .WinRate}} | {{signed .PnL}} | {{money .Deposits}} |
{{- end}}

## Growth

| Month | Balance | Cumulative P&L | ROI |
|---|---:|---:|---:|
{{- range .Growth}}
| {{.Month}} | {{money .Balance}} | {{signed .CumulativePnL}} | {{pct .ROI}} |
{{- end}}
{{- end}}
{{- if .Symbols}}

## By symbol

| Symbol | Trades | Win rate | P&L |
|---|---:|---:|---:|
{{- range .Symbols}}
| {{.Key}} | {{.Trades}} | {{pct .WinRate}} | {{signed .PnL}} |
{{- end}}
{{- end}}
{{- if .Tags}}

## By tag

| Tag | Trades | Win rate | P&L |
|---|---:|---:|---:|
{{- range .Tags}}
| {{.Key}} | {{.Trades}} | {{pct .WinRate}} | {{signed .PnL}} |
{{- end}}
{{- end}}
{{- range .Reviews}}

## Review {{.Month}}{{if .Sentiment}} ({{.Sentiment}}){{end}}
{{if .Goals}}
**Goals:** {{.Goals}}
{{end}}{{if .Successes}}
**Successes:** {{.Successes}}
{{end}}{{if .Challenges}}
**Challenges:** {{.Challenges}}
{{end}}{{if .Lessons}}
**Lessons:** {{.Lessons}}
{{end}}{{if .NextMonth}}
**Next month:** {{.NextMonth}}
{{end}}
{{- end}}
`
