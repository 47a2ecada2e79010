package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/report"
	"github.com/rustyeddy/tradejournal/transfer"
)

func newTradeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record, edit and list trades",
		Long: `Manage closed trades. Every change updates the account balance:
a win adds its pnl, a loss subtracts it and a break-even leaves it alone.

Examples:
  tradejournal trade add --symbol EURUSD --direction long --outcome win --pnl 120 --tags breakout
  tradejournal trade update 1718000000000 --outcome loss
  tradejournal trade list --outcome win --sort pnl --desc`,
	}
	cmd.AddCommand(
		newTradeAddCmd(a),
		newTradeUpdateCmd(a),
		newTradeDeleteCmd(a),
		newTradeListCmd(a),
		newTradeShowCmd(a),
	)
	return cmd
}

// tradeFlags binds the editable trade fields to a command.
type tradeFlags struct {
	date, symbol, direction, outcome, notes string
	size, pnl                               float64
	tags, images                            []string
}

func (f *tradeFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "trade date YYYY-MM-DD (default today)")
	fl.StringVar(&f.symbol, "symbol", "", "instrument symbol")
	fl.StringVar(&f.direction, "direction", "", "long|short")
	fl.StringVar(&f.outcome, "outcome", "", "win|loss|be")
	fl.StringVar(&f.notes, "notes", "", "free-form notes")
	fl.Float64Var(&f.size, "size", 0, "position size")
	fl.Float64Var(&f.pnl, "pnl", 0, "profit or loss magnitude")
	fl.StringSliceVar(&f.tags, "tags", nil, "comma separated tags")
	fl.StringSliceVar(&f.images, "image", nil, "image reference (repeatable)")
}

// apply copies the flags the user set onto in.
func (f *tradeFlags) apply(cmd *cobra.Command, in *ledger.TradeInput) error {
	fl := cmd.Flags()
	if fl.Changed("date") {
		in.Date = f.date
	}
	if fl.Changed("symbol") {
		in.Symbol = f.symbol
	}
	if fl.Changed("direction") {
		d, err := ledger.ParseDirection(f.direction)
		if err != nil {
			return err
		}
		in.Direction = d
	}
	if fl.Changed("outcome") {
		o, err := ledger.ParseOutcome(f.outcome)
		if err != nil {
			return err
		}
		in.Outcome = o
	}
	if fl.Changed("notes") {
		in.Notes = f.notes
	}
	if fl.Changed("size") {
		in.PositionSize = f.size
	}
	if fl.Changed("pnl") {
		in.PnL = f.pnl
	}
	if fl.Changed("tags") {
		in.Tags = f.tags
	}
	if fl.Changed("image") {
		in.Images = f.images
	}
	return nil
}

func newTradeAddCmd(a *app) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a closed trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := ledger.TradeInput{
				Date:      a.now().Format(ledger.DateLayout),
				Direction: ledger.Long,
				Tags:      []string{},
			}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return fmt.Errorf("invalid trade: %w", err)
			}
			t, err := a.ledger.AddTrade(in)
			if err != nil {
				return fmt.Errorf("add trade: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added trade %d (%s %s %s)\n", t.ID, t.Symbol, t.Outcome, a.money(t.Effect().InexactFloat64()))
			fmt.Fprintf(cmd.OutOrStdout(), "  Balance: %s\n", a.money(a.ledger.Balance()))
			return nil
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func newTradeUpdateCmd(a *app) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tradeID, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, ok := a.ledger.Trade(tradeID)
			if !ok {
				return fmt.Errorf("update %d: %w", tradeID, ledger.ErrTradeNotFound)
			}
			in := cur.Input()
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			if err := in.Validate(); err != nil {
				return fmt.Errorf("invalid trade: %w", err)
			}
			if err := a.ledger.UpdateTrade(in.Trade(tradeID)); err != nil {
				return fmt.Errorf("update trade: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated trade %d\n", tradeID)
			fmt.Fprintf(cmd.OutOrStdout(), "  Balance: %s\n", a.money(a.ledger.Balance()))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newTradeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a trade and reverse its effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tradeID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteTrade(tradeID); err != nil {
				return fmt.Errorf("delete trade: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %d\n", tradeID)
			fmt.Fprintf(cmd.OutOrStdout(), "  Balance: %s\n", a.money(a.ledger.Balance()))
			return nil
		},
	}
}

func newTradeListCmd(a *app) *cobra.Command {
	var (
		search, direction, outcome, sortBy, format string
		desc                                       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ledger.Filter{Search: search}
			if direction != "" {
				d, err := ledger.ParseDirection(direction)
				if err != nil {
					return err
				}
				filter.Direction = d
			}
			if outcome != "" {
				o, err := ledger.ParseOutcome(outcome)
				if err != nil {
					return err
				}
				filter.Outcome = o
			}
			field, err := ledger.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			trades := ledger.Query(a.ledger.Trades(), filter, field, desc)

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				return a.writeTrades(out, trades)
			case "csv":
				return transfer.WriteTradesCSV(out, trades)
			case "org":
				fmt.Fprintln(out, report.FormatTradesOrg(trades))
				return nil
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(trades)
			}
			return fmt.Errorf("unknown format %q", format)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&search, "search", "s", "", "match symbol, notes or tags")
	fl.StringVar(&direction, "direction", "", "only long|short")
	fl.StringVar(&outcome, "outcome", "", "only win|loss|be")
	fl.StringVar(&sortBy, "sort", "", "date|symbol|pnl|size|outcome")
	fl.BoolVar(&desc, "desc", false, "sort descending")
	fl.StringVarP(&format, "format", "f", "table", "table|csv|org|json")
	return cmd
}

func newTradeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one trade as an Org-mode block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tradeID, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, ok := a.ledger.Trade(tradeID)
			if !ok {
				return fmt.Errorf("show %d: %w", tradeID, ledger.ErrTradeNotFound)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatTradeOrg(t))
			return nil
		},
	}
}
