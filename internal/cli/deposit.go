package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/ledger"
)

var ErrDrift = errors.New("stored balance does not match deposits plus trading results")

func newDepositCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Record and list deposits",
	}
	cmd.AddCommand(newDepositAddCmd(a), newDepositListCmd(a))
	return cmd
}

func newDepositAddCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add funds to the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
				return fmt.Errorf("bad amount %q", args[0])
			}
			if amount <= 0 {
				return fmt.Errorf("amount must be positive")
			}
			if date == "" {
				date = a.now().Format(ledger.DateLayout)
			}
			if _, err := time.Parse(ledger.DateLayout, date); err != nil {
				return fmt.Errorf("bad date %q: %w", date, err)
			}
			d, err := a.ledger.AddDeposit(amount, date)
			if err != nil {
				return fmt.Errorf("add deposit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deposited %s on %s\n", a.money(d.Amount), d.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "  Balance: %s\n", a.money(a.ledger.Balance()))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "deposit date YYYY-MM-DD (default today)")
	return cmd
}

func newDepositListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deposits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := table(cmd)
			row(tw, "ID", "DATE", "AMOUNT")
			for _, d := range a.ledger.Deposits() {
				row(tw, strconv.FormatInt(d.ID, 10), d.Date, a.money(d.Amount))
			}
			row(tw, "", "TOTAL", a.money(a.ledger.TotalDeposits()))
			return tw.Flush()
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Balance:     %s\n", a.money(a.ledger.Balance()))
			fmt.Fprintf(out, "Deposits:    %s\n", a.money(a.ledger.TotalDeposits()))
			fmt.Fprintf(out, "Trading P&L: %s\n", a.money(a.ledger.TradingPnL()))
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the stored balance with deposits plus trade effects",
		Long: `The balance is maintained incrementally and an import trusts the
balance in the file. check recomputes it from scratch and reports any
difference. It exits non-zero when the two disagree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, drift := a.ledger.Reconcile()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stored:   %s\n", a.money(a.ledger.Balance()))
			fmt.Fprintf(out, "Expected: %s\n", a.money(expected))
			if math.Abs(drift) >= 0.005 {
				fmt.Fprintf(out, "Drift:    %s\n", a.money(drift))
				a.log.Warn("balance drift", "drift", drift)
				return ErrDrift
			}
			fmt.Fprintln(out, "✓ Balance reconciles")
			return nil
		},
	}
}
