// Package money provides the signed decimal Amount type used for statement
// transactions. Arithmetic runs on shopspring/decimal so totals never pick up
// float drift; display formatting goes through go-money for proper currency
// grouping. Positive amounts are income/credits, negative are expenses/debits.
package money

import (
	"bytes"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount is a signed decimal monetary value. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// FromDecimal wraps a decimal.Decimal as an Amount.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// FromFloat converts a floating-point value to an Amount.
// Prefer FromString when the value originates from text.
func FromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// FromString parses a plain decimal string such as "-1234.56".
// It does not accept currency symbols or grouping separators; statement
// cell cleanup happens in the extraction parser before this is called.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// Zero returns the zero Amount.
func Zero() Amount {
	return Amount{}
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Float64 returns the nearest float64 representation. Display only.
func (a Amount) Float64() float64 {
	return a.d.InexactFloat64()
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	return Amount{d: a.d.Abs()}
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsNegative reports whether the amount is less than zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// Cmp compares two amounts: -1 if a < b, 0 if equal, 1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// Equal reports whether two amounts are numerically equal.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String returns the plain decimal representation, e.g. "-1234.56".
func (a Amount) String() string {
	return a.d.String()
}

// Display formats the amount as US dollars with grouping, e.g. "$1,234.56"
// or "-$1,234.56". Fractions beyond cents round half away from zero.
func (a Amount) Display() string {
	cents := a.d.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return gomoney.New(cents, gomoney.USD).Display()
}

// PercentOf returns a as a percentage of total (e.g. 25.5 for 25.5%).
// A zero total yields zero.
func (a Amount) PercentOf(total Amount) float64 {
	if total.IsZero() {
		return 0
	}
	return a.d.Div(total.d).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Sum adds a sequence of amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes the amount as a bare JSON number, matching the
// transaction wire shape ({"amount": -1234.56}).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.d = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	a.d = d
	return nil
}
