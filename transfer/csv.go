package transfer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/metrics"
)

var (
	tradeHeader  = []string{"id", "date", "symbol", "direction", "position_size", "outcome", "pnl", "effect", "tags", "notes"}
	equityHeader = []string{"trade", "date", "equity"}
)

// WriteTradesCSV writes one row per trade. Tags are joined with "|".
func WriteTradesCSV(w io.Writer, trades []ledger.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Date,
			t.Symbol,
			string(t.Direction),
			f(t.PositionSize),
			string(t.Outcome),
			f(t.PnL),
			f(t.Effect().InexactFloat64()),
			strings.Join(t.Tags, "|"),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEquityCSV writes the equity curve.
func WriteEquityCSV(w io.Writer, points []metrics.EquityPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(equityHeader); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{strconv.Itoa(p.Trade), p.Date, f(p.Equity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
