package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/report"
	"github.com/rustyeddy/tradejournal/transfer"
)

func newStatsCmd(a *app) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show win rate, profit factor, streaks and ROI",
		Long: `Show headline statistics over all trades. With --by, break the
results down by symbol, tag, month or day.

Examples:
  tradejournal stats
  tradejournal stats --by tag`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trades := a.ledger.Trades()
			if by != "" {
				return a.writeGroups(cmd, by, trades)
			}

			s := metrics.Summarize(trades)
			st := metrics.ComputeStreaks(trades)
			roi := metrics.ROI(trades, a.ledger.Deposits(), a.ledger.Balance())

			tw := table(cmd)
			row(tw, "Trades", fmt.Sprintf("%d (%d W / %d L / %d BE)", s.Trades, s.Wins, s.Losses, s.BreakEven))
			row(tw, "Win rate", pct(s.WinRate))
			row(tw, "Profit factor", report.Ratio(s.ProfitFactor))
			row(tw, "Total P&L", a.money(s.TotalPnL))
			row(tw, "Average win", a.money(s.AvgWin))
			row(tw, "Average loss", a.money(s.AvgLoss))
			row(tw, "Max drawdown", a.money(metrics.MaxDrawdown(trades)))
			row(tw, "Longest streaks", fmt.Sprintf("%d W / %d L", st.LongestWin, st.LongestLoss))
			row(tw, "Current streak", fmt.Sprintf("%d W / %d L", st.CurrentWin, st.CurrentLoss))
			row(tw, "ROI", pct(roi))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "group by symbol|tag|month|day")
	return cmd
}

func (a *app) writeGroups(cmd *cobra.Command, by string, trades []ledger.Trade) error {
	var groups []metrics.Group
	switch strings.ToLower(by) {
	case "symbol":
		groups = metrics.BySymbol(trades)
	case "tag":
		groups = metrics.ByTag(trades)
	case "month":
		groups = metrics.Monthly(trades)
	case "day":
		groups = metrics.Daily(trades)
	default:
		return fmt.Errorf("unknown grouping %q", by)
	}
	tw := table(cmd)
	row(tw, strings.ToUpper(by), "TRADES", "WINS", "LOSSES", "BE", "WIN RATE", "PNL")
	for _, g := range groups {
		row(tw, g.Key,
			strconv.Itoa(g.Trades),
			strconv.Itoa(g.Wins),
			strconv.Itoa(g.Losses),
			strconv.Itoa(g.BreakEven),
			pct(g.WinRate()),
			a.money(g.PnL),
		)
	}
	return tw.Flush()
}

func newEquityCmd(a *app) *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Print the cumulative equity curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			points := metrics.EquityCurve(a.ledger.Trades())
			if asCSV {
				return transfer.WriteEquityCSV(cmd.OutOrStdout(), points)
			}
			tw := table(cmd)
			row(tw, "TRADE", "DATE", "EQUITY")
			for _, p := range points {
				row(tw, strconv.Itoa(p.Trade), p.Date, a.money(p.Equity))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV")
	return cmd
}

func newCalendarCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show daily results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := table(cmd)
			row(tw, "DATE", "TRADES", "WINS", "LOSSES", "PNL")
			for _, d := range metrics.Calendar(a.ledger.Trades()) {
				if month != "" && !strings.HasPrefix(d.Date, month) {
					continue
				}
				row(tw, d.Date, strconv.Itoa(d.Trades), strconv.Itoa(d.Wins), strconv.Itoa(d.Losses), a.money(d.PnL))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only days in YYYY-MM")
	return cmd
}

func newPerformanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Show monthly results and account growth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trades, deposits, balance := a.ledger.Trades(), a.ledger.Deposits(), a.ledger.Balance()
			months := metrics.MonthlyPerformance(trades, deposits)
			growth := metrics.Growth(months, metrics.StartingBalance(deposits, balance))

			tw := table(cmd)
			row(tw, "MONTH", "TRADES", "WIN RATE", "PNL", "DEPOSITS", "BALANCE", "MONTH ROI", "ROI")
			for i, m := range months {
				g := growth[i]
				row(tw, m.Month,
					strconv.Itoa(m.Trades),
					pct(m.WinRate()),
					a.money(m.PnL),
					a.money(m.Deposits),
					a.money(g.Balance),
					pct(g.MonthlyROI),
					pct(g.ROI),
				)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			current := a.now().Format("2006-01")
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal ROI:   %s\nMonthly ROI: %s (%s)\n",
				pct(metrics.ROI(trades, deposits, balance)),
				pct(metrics.MonthlyROI(trades, deposits, balance, current)),
				current)
			return nil
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		pretty bool
		html   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown analytics report",
		Long: `Render every analytics view into one Markdown document.

Examples:
  tradejournal report --pretty
  tradejournal report -o report.md
  tradejournal report --html -o report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := report.Build(a.ledger.Snapshot(), a.cfg.Account.Currency, a.now())
			md, err := r.Markdown()
			if err != nil {
				return err
			}
			if html {
				if md, err = report.HTML(md); err != nil {
					return err
				}
			}
			if output != "" {
				if err := os.WriteFile(output, []byte(md), 0o600); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", output)
				return nil
			}
			if pretty && !html {
				if md, err = report.Pretty(md); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "style the output for a terminal")
	cmd.Flags().BoolVar(&html, "html", false, "render HTML instead of Markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file")
	return cmd
}
