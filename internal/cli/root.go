package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/store"
)

// Command annotations.
const (
	noStore = "no-store" // the command runs without opening the journal
	noAuth  = "no-auth"  // the command works while the journal is locked
)

// ErrLocked is returned when a password is set and there is no valid
// session.
var ErrLocked = errors.New("journal is locked: run `tradejournal auth login`")

// RootConfig holds the global flags.
type RootConfig struct {
	ConfigPath string
	EnvFile    string
	StoreType  string
	StorePath  string
	LogLevel   string
	Currency   string
}

// app is what a command needs once the root has set up.
type app struct {
	rc     RootConfig
	cfg    *config.Config
	log    *slog.Logger
	store  store.Store
	ledger *ledger.Ledger
	gate   *auth.Gate
	money  func(float64) string
	now    func() time.Time
	in     *bufio.Reader
}

func NewRootCmd() *cobra.Command {
	a := &app{now: time.Now}
	return newRootCmd(a)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Trading journal: trades, deposits, analytics and notes",
		Long: `Tradejournal records closed trades and deposits, keeps a running
account balance, and derives performance analytics from them.

Examples:
  tradejournal deposit add 1000
  tradejournal trade add --symbol EURUSD --direction long --outcome win --pnl 120
  tradejournal stats
  tradejournal report --pretty`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&a.rc.EnvFile, "env-file", ".env", "Dotenv file with TRADEJOURNAL_* overrides")
	cmd.PersistentFlags().StringVar(&a.rc.StoreType, "store", "", "Store backend: file|sqlite|memory")
	cmd.PersistentFlags().StringVar(&a.rc.StorePath, "db", "", "Store path")
	cmd.PersistentFlags().StringVar(&a.rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&a.rc.Currency, "currency", "", "Display currency (ISO code)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(
		newTradeCmd(a),
		newDepositCmd(a),
		newBalanceCmd(a),
		newCheckCmd(a),
		newStatsCmd(a),
		newEquityCmd(a),
		newCalendarCmd(a),
		newPerformanceCmd(a),
		newReportCmd(a),
		newJournalCmd(a),
		newReviewCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newClearCmd(a),
		newAuthCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup loads config (file, then environment, then flags), then opens the store and ledger unless the command
// opts out, then enforces the password gate.
func (a *app) setup(cmd *cobra.Command) error {
	a.in = bufio.NewReader(cmd.InOrStdin())

	cfg := config.Default()
	if a.rc.ConfigPath != "" {
		loaded, err := config.LoadFromFile(a.rc.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	env, err := config.Environ(a.rc.EnvFile)
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	if a.rc.StoreType != "" {
		cfg.Store.Type = a.rc.StoreType
	}
	if a.rc.StorePath != "" {
		cfg.Store.Path = a.rc.StorePath
	}
	if a.rc.LogLevel != "" {
		cfg.Logging.Level = a.rc.LogLevel
	}
	if a.rc.Currency != "" {
		cfg.Account.Currency = a.rc.Currency
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.Logging.Level)
	a.money = moneyFormatter(cfg.Account.Currency)

	if annotated(cmd, noStore) || builtin(cmd) {
		return nil
	}

	s, err := store.Open(store.Kind(cfg.Store.Type), cfg.Store.Path, a.log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = s
	a.ledger = ledger.New(s, a.log)
	a.ledger.SetClock(a.now)

	ttl, _ := cfg.Auth.ParseTokenTTL()
	a.gate = auth.NewGate(s, store.ErrNoKey, ttl, a.log)
	a.gate.SetClock(a.now)

	if !cfg.Auth.Enabled || annotated(cmd, noAuth) {
		return nil
	}
	ok, err := a.gate.Authenticated()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// readLine reads one line of input, for passwords and confirmations.
func (a *app) readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// annotated reports whether cmd or any parent carries the annotation.
func annotated(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[key] == "true" {
			return true
		}
	}
	return false
}

// builtin reports whether cmd belongs to cobra's help or completion
// commands.
func builtin(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func skip(keys ...string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = "true"
	}
	return m
}

// Run executes the command line in args and releases the store afterwards.
func Run(args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{now: time.Now}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := cmd.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func Execute() {
	if err := Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
