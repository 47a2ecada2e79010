// Package ledger keeps the list of trades and deposits and the running
// account balance that follows from them.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

var ErrTradeNotFound = errors.New("trade not found")

// Snapshot is the whole persisted state.
type Snapshot struct {
	Trades         []Trade          `json:"trades"`
	Deposits       []Deposit        `json:"deposits"`
	Balance        float64          `json:"balance"`
	JournalEntries []journal.Entry  `json:"journalEntries"`
	Reviews        []journal.Review `json:"reviews,omitempty"`
}

// Persister loads and stores snapshots. Wipe removes everything it holds.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
	Wipe() error
}

// Ledger owns trades, deposits, the journal book and the balance. Every
// mutation is written through to the Persister. A Ledger belongs to one
// goroutine.
type Ledger struct {
	trades   []Trade
	deposits []Deposit
	balance  decimal.Decimal
	book     *journal.Book

	store Persister
	log   *slog.Logger
	now   func() time.Time
}

// New loads the initial state from p. A failed load is logged and the
// ledger starts empty; it never blocks startup.
func New(p Persister, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	l := &Ledger{
		store: p,
		log:   log,
		now:   time.Now,
		book:  journal.NewBook(nil, nil),
	}
	if p == nil {
		return l
	}
	s, err := p.Load()
	if err != nil {
		log.Error("load ledger, starting empty", "error", err)
		return l
	}
	l.replace(s)
	return l
}

// SetClock overrides the time source used to assign ids.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
	l.book.SetClock(now)
}

// Journal gives read access to diary entries and reviews. Use the ledger's
// SaveEntry, DeleteEntry and SaveReview to change them so the change is
// persisted.
func (l *Ledger) Journal() *journal.Book { return l.book }

// AddTrade assigns an id, appends the trade and applies its effect.
func (l *Ledger) AddTrade(in TradeInput) (Trade, error) {
	t := in.Trade(id.NextAt(l.now()))
	l.trades = append(l.trades, t)
	l.balance = l.balance.Add(t.Effect())
	l.log.Debug("trade added", "id", t.ID, "symbol", t.Symbol, "outcome", t.Outcome, "balance", l.Balance())
	return t.clone(), l.persist()
}

// UpdateTrade replaces the trade with t.ID in place, reversing the old
// effect before applying the new one.
func (l *Ledger) UpdateTrade(t Trade) error {
	i := l.index(t.ID)
	if i < 0 {
		return fmt.Errorf("update %d: %w", t.ID, ErrTradeNotFound)
	}
	t = t.sanitized()
	old := l.trades[i]
	l.balance = l.balance.Sub(old.Effect()).Add(t.Effect())
	l.trades[i] = t.clone()
	if l.trades[i].Tags == nil {
		l.trades[i].Tags = []string{}
	}
	l.log.Debug("trade updated", "id", t.ID, "balance", l.Balance())
	return l.persist()
}

// DeleteTrade reverses the trade's effect and removes it.
func (l *Ledger) DeleteTrade(tradeID int64) error {
	i := l.index(tradeID)
	if i < 0 {
		return fmt.Errorf("delete %d: %w", tradeID, ErrTradeNotFound)
	}
	l.balance = l.balance.Sub(l.trades[i].Effect())
	l.trades = append(l.trades[:i], l.trades[i+1:]...)
	l.log.Debug("trade deleted", "id", tradeID, "balance", l.Balance())
	return l.persist()
}

// AddDeposit records a deposit and adds it to the balance. The amount is
// not checked beyond being made finite; callers pass positive values.
func (l *Ledger) AddDeposit(amount float64, date string) (Deposit, error) {
	amount = Finite(amount)
	d := Deposit{ID: id.NextAt(l.now()), Amount: amount, Date: date}
	l.deposits = append(l.deposits, d)
	l.balance = l.balance.Add(Dec(amount))
	l.log.Debug("deposit added", "id", d.ID, "amount", amount, "balance", l.Balance())
	return d, l.persist()
}

// Clear drops all state and wipes the store.
func (l *Ledger) Clear() error {
	l.trades = nil
	l.deposits = nil
	l.balance = decimal.Zero
	l.book.Replace(nil, nil)
	l.log.Info("ledger cleared")
	if l.store == nil {
		return nil
	}
	if err := l.store.Wipe(); err != nil {
		return fmt.Errorf("wipe store: %w", err)
	}
	return nil
}

// ImportSnapshot replaces every collection with the contents of s. The
// balance is taken as given, not recomputed from the lists.
func (l *Ledger) ImportSnapshot(s Snapshot) error {
	l.replace(s)
	l.log.Info("snapshot imported", "trades", len(s.Trades), "deposits", len(s.Deposits), "entries", len(s.JournalEntries))
	return l.persist()
}

// SaveEntry creates (entryID == 0) or rewrites a journal entry.
func (l *Ledger) SaveEntry(d journal.Draft, entryID int64) (journal.Entry, error) {
	e, err := l.book.Save(d, entryID)
	if err != nil {
		return journal.Entry{}, err
	}
	return e, l.persist()
}

// DeleteEntry removes a journal entry.
func (l *Ledger) DeleteEntry(entryID int64) error {
	if err := l.book.Delete(entryID); err != nil {
		return err
	}
	return l.persist()
}

// SaveReview stores the review for its month.
func (l *Ledger) SaveReview(r journal.Review) error {
	if err := l.book.SaveReview(r); err != nil {
		return err
	}
	return l.persist()
}

// Trades returns a copy of the trade list in insertion order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	for i, t := range l.trades {
		out[i] = t.clone()
	}
	return out
}

// Trade returns the trade with the given id.
func (l *Ledger) Trade(tradeID int64) (Trade, bool) {
	i := l.index(tradeID)
	if i < 0 {
		return Trade{}, false
	}
	return l.trades[i].clone(), true
}

// Deposits returns a copy of the deposit list.
func (l *Ledger) Deposits() []Deposit {
	return append([]Deposit{}, l.deposits...)
}

// Balance is the running account balance.
func (l *Ledger) Balance() float64 {
	return l.balance.InexactFloat64()
}

// TotalDeposits is the sum of all deposit amounts.
func (l *Ledger) TotalDeposits() float64 {
	return sumDeposits(l.deposits).InexactFloat64()
}

// TradingPnL is the balance less deposits.
func (l *Ledger) TradingPnL() float64 {
	return l.balance.Sub(sumDeposits(l.deposits)).InexactFloat64()
}

// Reconcile recomputes the balance from deposits and trades and returns the
// difference between the running balance and that figure. It is zero unless
// an imported balance disagreed with its lists.
func (l *Ledger) Reconcile() (expected, drift float64) {
	want := sumDeposits(l.deposits)
	for _, t := range l.trades {
		want = want.Add(t.Effect())
	}
	return want.InexactFloat64(), l.balance.Sub(want).InexactFloat64()
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Trades:         l.Trades(),
		Deposits:       l.Deposits(),
		Balance:        l.Balance(),
		JournalEntries: l.book.Entries(),
		Reviews:        l.book.Reviews(),
	}
}

func (l *Ledger) replace(s Snapshot) {
	l.trades = make([]Trade, 0, len(s.Trades))
	for _, t := range s.Trades {
		id.Observe(t.ID)
		l.trades = append(l.trades, t.clone())
	}
	l.deposits = append([]Deposit(nil), s.Deposits...)
	for _, d := range s.Deposits {
		id.Observe(d.ID)
	}
	l.balance = Dec(s.Balance)
	l.book.Replace(s.JournalEntries, s.Reviews)
}

func (l *Ledger) persist() error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(l.Snapshot()); err != nil {
		l.log.Error("persist ledger", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (l *Ledger) index(tradeID int64) int {
	for i := range l.trades {
		if l.trades[i].ID == tradeID {
			return i
		}
	}
	return -1
}

func sumDeposits(ds []Deposit) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(Dec(d.Amount))
	}
	return sum
}
