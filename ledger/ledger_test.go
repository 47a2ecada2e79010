package ledger

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

type fakeStore struct {
	snap    Snapshot
	loadErr error
	saveErr error
	saves   int
	wiped   bool
}

func (f *fakeStore) Load() (Snapshot, error) { return f.snap, f.loadErr }
func (f *fakeStore) Save(s Snapshot) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snap = s
	return nil
}
func (f *fakeStore) Wipe() error {
	f.wiped = true
	f.snap = Snapshot{}
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, *fakeStore) {
	t.Helper()
	fs := &fakeStore{}
	l := New(fs, nil)
	l.SetClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) })
	return l, fs
}

func trade(o Outcome, pnl float64) TradeInput {
	return TradeInput{Date: "2024-05-01", Symbol: "EURUSD", Direction: Long, PositionSize: 1, Outcome: o, PnL: pnl}
}

func TestEffect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome Outcome
		pnl     float64
		want    float64
	}{
		{"win positive", Win, 100, 100},
		{"win stored negative", Win, -100, 100},
		{"loss positive", Loss, 40, -40},
		{"loss negative", Loss, -40, -40},
		{"break even", BreakEven, 12, 0},
		{"unknown outcome", Outcome("??"), 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effect(tt.outcome, tt.pnl).InexactFloat64())
		})
	}
}

func TestAddTradeAppliesEffect(t *testing.T) {
	t.Parallel()

	l, fs := newTestLedger(t)

	w, err := l.AddTrade(trade(Win, 100))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Loss, 40))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(BreakEven, 5))
	require.NoError(t, err)

	assert.NotZero(t, w.ID)
	assert.Equal(t, 60.0, l.Balance())
	assert.Len(t, l.Trades(), 3)
	assert.Equal(t, 3, fs.saves)
	assert.Len(t, fs.snap.Trades, 3)
}

func TestAddTradeAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		tr, err := l.AddTrade(trade(Win, 1))
		require.NoError(t, err)
		assert.False(t, seen[tr.ID])
		seen[tr.ID] = true
	}
}

func TestUpdateTradeReversesOldEffect(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	first, err := l.AddTrade(trade(Win, 100))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Win, 10))
	require.NoError(t, err)

	changed := first
	changed.Outcome = Loss
	changed.PnL = 30
	require.NoError(t, l.UpdateTrade(changed))

	assert.Equal(t, -20.0, l.Balance())
	trades := l.Trades()
	assert.Equal(t, first.ID, trades[0].ID, "order is preserved")
	assert.Equal(t, Loss, trades[0].Outcome)
}

func TestUpdateThenRestoreIsSymmetric(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	_, err := l.AddDeposit(1000, "2024-05-01")
	require.NoError(t, err)
	orig, err := l.AddTrade(trade(Loss, -75.5))
	require.NoError(t, err)
	before := l.Balance()

	for _, o := range []Outcome{Win, Loss, BreakEven} {
		changed := orig
		changed.Outcome = o
		changed.PnL = 333.33
		require.NoError(t, l.UpdateTrade(changed))
		require.NoError(t, l.UpdateTrade(orig))
		assert.Equal(t, before, l.Balance())
	}
}

func TestUpdateUnknownTrade(t *testing.T) {
	t.Parallel()

	l, fs := newTestLedger(t)
	_, err := l.AddTrade(trade(Win, 50))
	require.NoError(t, err)
	saves := fs.saves

	err = l.UpdateTrade(Trade{ID: 999, Outcome: Win, PnL: 1000})
	assert.ErrorIs(t, err, ErrTradeNotFound)
	assert.Equal(t, 50.0, l.Balance())
	assert.Len(t, l.Trades(), 1)
	assert.Equal(t, saves, fs.saves)
}

func TestDeleteTrade(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	a, err := l.AddTrade(trade(Win, 50))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Loss, 20))
	require.NoError(t, err)

	require.NoError(t, l.DeleteTrade(a.ID))
	assert.Equal(t, -20.0, l.Balance())
	assert.Len(t, l.Trades(), 1)
}

func TestDeleteUnknownTradeLeavesState(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	_, err := l.AddTrade(trade(Win, 50))
	require.NoError(t, err)
	before := l.Snapshot()

	assert.ErrorIs(t, l.DeleteTrade(12345), ErrTradeNotFound)
	assert.ErrorIs(t, l.DeleteTrade(12345), ErrTradeNotFound)
	assert.Equal(t, before, l.Snapshot())
}

func TestBalanceInvariant(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	_, err := l.AddDeposit(500, "2024-01-01")
	require.NoError(t, err)
	a, err := l.AddTrade(trade(Win, 120.10))
	require.NoError(t, err)
	b, err := l.AddTrade(trade(Loss, 80.20))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(BreakEven, 0))
	require.NoError(t, err)
	_, err = l.AddDeposit(250.05, "2024-02-01")
	require.NoError(t, err)

	b.Outcome = Win
	require.NoError(t, l.UpdateTrade(b))
	require.NoError(t, l.DeleteTrade(a.ID))
	_, err = l.AddTrade(trade(Loss, 0.30))
	require.NoError(t, err)

	sum := 0.0
	for _, d := range l.Deposits() {
		sum += d.Amount
	}
	for _, tr := range l.Trades() {
		sum += tr.Effect().InexactFloat64()
	}
	assert.InDelta(t, sum, l.Balance(), 1e-9)
	assert.Equal(t, 829.95, l.Balance())

	expected, drift := l.Reconcile()
	assert.Equal(t, l.Balance(), expected)
	assert.Zero(t, drift)
}

func TestTradingPnL(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	_, err := l.AddDeposit(1000, "2024-01-01")
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Win, 0.1))
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Win, 0.2))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, l.TotalDeposits())
	assert.Equal(t, 0.3, l.TradingPnL())
	assert.Equal(t, 1000.3, l.Balance())
}

func TestNonFiniteAmountsDoNotPoisonBalance(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	_, err := l.AddDeposit(100, "2024-01-01")
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Win, math.NaN()))
	require.NoError(t, err)

	assert.Equal(t, 100.0, l.Balance())
}

// jsonStore encodes every snapshot the way the file backend does.
type jsonStore struct {
	saved []byte
}

func (j *jsonStore) Load() (Snapshot, error) { return Snapshot{}, nil }
func (j *jsonStore) Save(s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	j.saved = b
	return nil
}
func (j *jsonStore) Wipe() error { j.saved = nil; return nil }

func TestNonFiniteValuesAreStoredAsZero(t *testing.T) {
	t.Parallel()

	js := &jsonStore{}
	l := New(js, nil)

	added, err := l.AddTrade(TradeInput{Date: "2024-05-01", Symbol: "EURUSD", Direction: Long, PositionSize: math.Inf(1), Outcome: Win, PnL: math.NaN()})
	require.NoError(t, err)
	assert.Zero(t, added.PnL)
	assert.Zero(t, added.PositionSize)

	_, err = l.AddTrade(trade(Win, 25))
	require.NoError(t, err, "later mutations still persist")

	added.PnL = math.Inf(-1)
	require.NoError(t, l.UpdateTrade(added))
	d, err := l.AddDeposit(math.NaN(), "2024-05-01")
	require.NoError(t, err)
	assert.Zero(t, d.Amount)

	var saved Snapshot
	require.NoError(t, json.Unmarshal(js.saved, &saved))
	require.Len(t, saved.Trades, 2)
	assert.Zero(t, saved.Trades[0].PnL)
	assert.Equal(t, 25.0, saved.Balance)
}

func TestImportSnapshotTrustsBalance(t *testing.T) {
	t.Parallel()

	l, fs := newTestLedger(t)
	_, err := l.AddTrade(trade(Win, 10))
	require.NoError(t, err)

	s := Snapshot{
		Trades:         []Trade{{ID: 7, Date: "2024-01-01", Outcome: Win, PnL: 5, Tags: []string{}}},
		Deposits:       []Deposit{{ID: 8, Amount: 100, Date: "2024-01-01"}},
		Balance:        42,
		JournalEntries: []journal.Entry{{ID: 9, Title: "t", Tags: []string{}}},
	}
	require.NoError(t, l.ImportSnapshot(s))

	assert.Equal(t, 42.0, l.Balance())
	assert.Equal(t, s.Trades, l.Trades())
	assert.Equal(t, s.Deposits, l.Deposits())
	assert.Len(t, l.Journal().Entries(), 1)
	assert.Equal(t, 42.0, fs.snap.Balance)

	_, drift := l.Reconcile()
	assert.Equal(t, -63.0, drift)
}

func TestClear(t *testing.T) {
	t.Parallel()

	l, fs := newTestLedger(t)
	_, err := l.AddDeposit(100, "2024-01-01")
	require.NoError(t, err)
	_, err = l.AddTrade(trade(Win, 10))
	require.NoError(t, err)
	_, err = l.SaveEntry(journal.Draft{Title: "x"}, 0)
	require.NoError(t, err)

	require.NoError(t, l.Clear())
	assert.True(t, fs.wiped)
	assert.Zero(t, l.Balance())
	assert.Empty(t, l.Trades())
	assert.Empty(t, l.Deposits())
	assert.Empty(t, l.Journal().Entries())
}

func TestNewLoadsFromStore(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{snap: Snapshot{
		Trades:  []Trade{{ID: 1, Outcome: Loss, PnL: 3}},
		Balance: 97,
	}}
	l := New(fs, nil)

	assert.Equal(t, 97.0, l.Balance())
	assert.Len(t, l.Trades(), 1)
}

func TestNewStartsEmptyOnLoadError(t *testing.T) {
	t.Parallel()

	l := New(&fakeStore{loadErr: errors.New("corrupt")}, nil)
	assert.Zero(t, l.Balance())
	assert.Empty(t, l.Trades())
}

func TestSaveErrorIsReturned(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{saveErr: errors.New("disk full")}
	l := New(fs, nil)

	_, err := l.AddTrade(trade(Win, 10))
	assert.Error(t, err)
	assert.Equal(t, 10.0, l.Balance(), "in-memory state still reflects the mutation")
}

func TestJournalMutationsPersist(t *testing.T) {
	t.Parallel()

	l, fs := newTestLedger(t)
	e, err := l.SaveEntry(journal.Draft{Title: "first"}, 0)
	require.NoError(t, err)
	require.Len(t, fs.snap.JournalEntries, 1)

	require.NoError(t, l.SaveReview(journal.Review{Month: "2024-05", Sentiment: journal.Positive}))
	require.Len(t, fs.snap.Reviews, 1)

	require.NoError(t, l.DeleteEntry(e.ID))
	assert.Empty(t, fs.snap.JournalEntries)
	assert.ErrorIs(t, l.DeleteEntry(e.ID), journal.ErrEntryNotFound)
}

func TestTradesAreCopies(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t)
	in := trade(Win, 1)
	in.Tags = []string{"breakout"}
	tr, err := l.AddTrade(in)
	require.NoError(t, err)

	l.Trades()[0].Tags[0] = "mutated"
	got, ok := l.Trade(tr.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"breakout"}, got.Tags)
}
