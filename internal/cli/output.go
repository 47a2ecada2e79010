package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/report"
)

func moneyFormatter(currency string) func(float64) string {
	return report.NewMoney(currency).Format
}

func table(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func (a *app) writeTrades(w io.Writer, trades []ledger.Trade) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row(tw, "ID", "DATE", "SYMBOL", "DIR", "SIZE", "OUTCOME", "PNL", "EFFECT", "TAGS")
	for _, t := range trades {
		row(tw,
			strconv.FormatInt(t.ID, 10),
			t.Date,
			t.Symbol,
			string(t.Direction),
			strconv.FormatFloat(t.PositionSize, 'f', -1, 64),
			string(t.Outcome),
			a.money(t.PnL),
			a.money(t.Effect().InexactFloat64()),
			strings.Join(t.Tags, ","),
		)
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q: %w", s, err)
	}
	return v, nil
}

func pct(x float64) string { return report.Percent(x) }
