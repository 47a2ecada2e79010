package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Money formats amounts in one currency.
type Money struct {
	code     string
	fraction int32
}

// NewMoney returns a formatter for the ISO code. Unknown codes fall back to
// USD.
func NewMoney(code string) Money {
	code = strings.ToUpper(code)
	cur := money.GetCurrency(code)
	if cur == nil {
		code, cur = money.USD, money.GetCurrency(money.USD)
	}
	return Money{code: code, fraction: int32(cur.Fraction)}
}

// Format renders x with the currency symbol, e.g. "$1,234.50".
func (m Money) Format(x float64) string {
	return m.value(x).Display()
}

// Signed is Format with an explicit "+" on positive amounts.
func (m Money) Signed(x float64) string {
	v := m.value(x)
	if v.IsPositive() {
		return "+" + v.Display()
	}
	return v.Display()
}

func (m Money) value(x float64) *money.Money {
	minor := ledger.Dec(x).Shift(m.fraction).Round(0).IntPart()
	return money.New(minor, m.code)
}

// Percent renders x (already scaled to 100) with two decimals.
func Percent(x float64) string {
	return fmt.Sprintf("%.2f%%", x)
}

// Ratio renders a unitless ratio such as the profit factor.
func Ratio(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}
