package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Outcome classifies a closed trade. It alone decides the balance effect.
type Outcome string

const (
	Win       Outcome = "win"
	Loss      Outcome = "loss"
	BreakEven Outcome = "be"
)

// DateLayout is the calendar-day form trades and deposits are dated with.
const DateLayout = "2006-01-02"

// Trade is one recorded position outcome.
type Trade struct {
	ID           int64     `json:"id"`
	Date         string    `json:"date"`
	Symbol       string    `json:"symbol"`
	Direction    Direction `json:"direction"`
	PositionSize float64   `json:"positionSize"`
	Notes        string    `json:"notes"`
	Tags         []string  `json:"tags"`
	Outcome      Outcome   `json:"outcome"`
	PnL          float64   `json:"pnl"`
	Images       []string  `json:"images,omitempty"`
}

// TradeInput is a trade before it has been assigned an id.
type TradeInput struct {
	Date         string
	Symbol       string
	Direction    Direction
	PositionSize float64
	Notes        string
	Tags         []string
	Outcome      Outcome
	PnL          float64
	Images       []string
}

// Deposit is a manual addition of funds.
type Deposit struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// Effect returns the signed contribution t makes to the account balance.
// Win adds |pnl|, loss subtracts |pnl|, break-even adds nothing; the sign
// stored in PnL is ignored.
func (t Trade) Effect() decimal.Decimal {
	return Effect(t.Outcome, t.PnL)
}

// Effect is the balance effect of an outcome with the given pnl.
func Effect(o Outcome, pnl float64) decimal.Decimal {
	switch o {
	case Win:
		return Dec(pnl).Abs()
	case Loss:
		return Dec(pnl).Abs().Neg()
	default:
		return decimal.Zero
	}
}

// Dec converts a float to a decimal. Non-finite values become zero so a
// malformed amount can never poison the running balance.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(Finite(f))
}

// Finite returns f, or zero when f is NaN or infinite. Stored records go
// through it so they match what the balance used and stay encodable.
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// sanitized returns t with its numeric fields made finite.
func (t Trade) sanitized() Trade {
	t.PositionSize = Finite(t.PositionSize)
	t.PnL = Finite(t.PnL)
	return t
}

func (t Trade) clone() Trade {
	t.Tags = cloneStrings(t.Tags)
	t.Images = cloneStrings(t.Images)
	return t
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ParseDirection accepts long/short in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Long:
		return Long, nil
	case Short:
		return Short, nil
	}
	return "", fmt.Errorf("unknown direction %q (want long or short)", s)
}

// ParseOutcome accepts win, loss, be and the long form break-even.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "w":
		return Win, nil
	case "loss", "l":
		return Loss, nil
	case "be", "break-even", "breakeven":
		return BreakEven, nil
	}
	return "", fmt.Errorf("unknown outcome %q (want win, loss or be)", s)
}

var (
	ErrMissingField  = errors.New("missing required field")
	ErrNegativeValue = errors.New("value must not be negative")
	ErrBadNumber     = errors.New("value is not a finite number")
)

// Validate checks a trade input at the entry boundary. The ledger itself
// accepts whatever it is given; callers that take user input run this first.
// PnL is a magnitude: its sign is carried by Outcome, so negative values are
// rejected here.
func (in TradeInput) Validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return fmt.Errorf("symbol: %w", ErrMissingField)
	}
	if in.Date == "" {
		return fmt.Errorf("date: %w", ErrMissingField)
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return fmt.Errorf("date %q: %w", in.Date, err)
	}
	if _, err := ParseDirection(string(in.Direction)); err != nil {
		return err
	}
	if _, err := ParseOutcome(string(in.Outcome)); err != nil {
		return err
	}
	if err := nonNegative("pnl", in.PnL); err != nil {
		return err
	}
	return nonNegative("position size", in.PositionSize)
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %w", name, ErrBadNumber)
	}
	if v < 0 {
		return fmt.Errorf("%s: %w", name, ErrNegativeValue)
	}
	return nil
}

// Input returns the editable fields of t.
func (t Trade) Input() TradeInput {
	return TradeInput{
		Date:         t.Date,
		Symbol:       t.Symbol,
		Direction:    t.Direction,
		PositionSize: t.PositionSize,
		Notes:        t.Notes,
		Tags:         cloneStrings(t.Tags),
		Outcome:      t.Outcome,
		PnL:          t.PnL,
		Images:       cloneStrings(t.Images),
	}
}

// Trade builds the stored trade with the given id. Nil tags become empty
// and non-finite numbers zero.
func (in TradeInput) Trade(id int64) Trade {
	tags := cloneStrings(in.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Trade{
		ID:           id,
		Date:         in.Date,
		Symbol:       in.Symbol,
		Direction:    in.Direction,
		PositionSize: Finite(in.PositionSize),
		Notes:        in.Notes,
		Tags:         tags,
		Outcome:      in.Outcome,
		PnL:          Finite(in.PnL),
		Images:       cloneStrings(in.Images),
	}
}
