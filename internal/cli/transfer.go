package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/report"
	"github.com/rustyeddy/tradejournal/transfer"
)

var ErrNotConfirmed = errors.New("not confirmed")

func newExportCmd(a *app) *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal",
		Long: `Write the whole journal to a file or stdout.

Formats:
  json    - full backup that import can read back (default)
  csv     - trades only
  equity  - equity curve as CSV
  org     - trades and journal entries as Org-mode

Examples:
  tradejournal export -o backup.json
  tradejournal export --format csv > trades.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return a.export(cmd.OutOrStdout(), format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := a.exportTo(f, format); err != nil {
				return fmt.Errorf("export %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", format, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json|csv|equity|org")
	return cmd
}

// exportTo writes the export and closes wc, reporting a failed close.
func (a *app) exportTo(wc io.WriteCloser, format string) error {
	if err := a.export(wc, format); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func (a *app) export(w io.Writer, format string) error {
	switch format {
	case "json":
		return transfer.Write(w, a.ledger.Snapshot(), a.now())
	case "csv":
		return transfer.WriteTradesCSV(w, a.ledger.Trades())
	case "equity":
		return transfer.WriteEquityCSV(w, metrics.EquityCurve(a.ledger.Trades()))
	case "org":
		_, err := fmt.Fprintf(w, "* Trades\n%s\n* Journal\n%s\n",
			report.FormatTradesOrg(a.ledger.Trades()),
			report.FormatEntriesOrg(a.ledger.Journal().Entries()))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the journal with an exported backup",
		Long: `Load a JSON export. Trades, deposits, the balance and journal
entries are all replaced. The balance is taken from the file as is; run
check afterwards to compare it with the trades.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			s, err := transfer.Read(f)
			if err != nil {
				return err
			}
			if err := a.ledger.ImportSnapshot(s); err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades, %d deposits, %d journal entries\n",
				len(s.Trades), len(s.Deposits), len(s.JournalEntries))
			fmt.Fprintf(cmd.OutOrStdout(), "  Balance: %s\n", a.money(a.ledger.Balance()))
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all trades, deposits and journal entries",
		Long: `Wipe the journal. The password and other settings are kept.
Without --yes you are asked to type "yes".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				answer, err := a.readLine(cmd, "Delete everything? Type yes to confirm: ")
				if err != nil {
					return err
				}
				if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
					return ErrNotConfirmed
				}
			}
			if err := a.ledger.Clear(); err != nil {
				return fmt.Errorf("clear: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Journal cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
