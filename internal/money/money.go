// Package money provides the fixed-precision amount type used by the ledger.
//
// A Money value is a count of minor units (cents) at a fixed scale of two
// decimal places. Parsing goes through shopspring/decimal so that textual
// input such as "33.333" is rounded deterministically and never passes
// through a binary float.
package money

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places held in minor units.
const Scale = 2

var (
	// ErrInvalid is returned when text cannot be parsed as a decimal amount.
	ErrInvalid = errors.New("money: invalid amount")
	// ErrOverflow is returned when an amount does not fit in int64 minor units.
	ErrOverflow = errors.New("money: amount out of range")
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Money is an exact amount in minor units. The zero value is 0.00.
type Money struct {
	minor int64
}

// Zero is 0.00.
var Zero = Money{}

// MaxAmount is the largest amount the ledger accepts for an expense or a
// single split, 10,000,000,000,000.00. Sums of bounded amounts stay far
// from the int64 limit.
var MaxAmount = Money{minor: 1_000_000_000_000_000}

// FromMinor builds a Money from a count of minor units.
func FromMinor(minor int64) Money {
	return Money{minor: minor}
}

// Parse reads a decimal string such as "100", "33.34" or "-0.5".
// Values with more than two decimal places are rounded half away from zero.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty string", ErrInvalid)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests. It panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal rounds d to two places and converts it to minor units.
func FromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Round(Scale).Shift(Scale)
	if shifted.GreaterThan(maxMinor) || shifted.LessThan(minMinor) {
		return Zero, fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return Money{minor: shifted.IntPart()}, nil
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 { return m.minor }

// Decimal returns the amount as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minor, -Scale)
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

// Add returns m + o. It wraps on int64 overflow; use AddChecked for
// untrusted input.
func (m Money) Add(o Money) Money { return Money{minor: m.minor + o.minor} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{minor: m.minor - o.minor} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{minor: -m.minor} }

// AddChecked returns m + o, or ErrOverflow when the sum does not fit.
func (m Money) AddChecked(o Money) (Money, error) {
	sum := m.minor + o.minor
	if (o.minor > 0 && sum < m.minor) || (o.minor < 0 && sum > m.minor) {
		return Zero, fmt.Errorf("%w: %s + %s", ErrOverflow, m, o)
	}
	return Money{minor: sum}, nil
}

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.minor < o.minor:
		return -1
	case m.minor > o.minor:
		return 1
	default:
		return 0
	}
}

// Equal reports exact equality in minor units.
func (m Money) Equal(o Money) bool { return m.minor == o.minor }

// ApproxEqual reports whether m and o differ by at most tolerance minor units.
// Only use this where client-side rounding is expected.
func (m Money) ApproxEqual(o Money, tolerance int64) bool {
	if tolerance < 0 {
		return false
	}
	// unsigned distance cannot overflow for any pair of int64 values
	var diff uint64
	if m.minor >= o.minor {
		diff = uint64(m.minor) - uint64(o.minor)
	} else {
		diff = uint64(o.minor) - uint64(m.minor)
	}
	return diff <= uint64(tolerance)
}

// IsZero reports m == 0.
func (m Money) IsZero() bool { return m.minor == 0 }

// IsPositive reports m > 0.
func (m Money) IsPositive() bool { return m.minor > 0 }

// IsNegative reports m < 0.
func (m Money) IsNegative() bool { return m.minor < 0 }

// Sum adds all values.
func Sum(values ...Money) Money {
	var total Money
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Allocate splits m into n shares that differ by at most one minor unit.
// The remainder goes to the first shares, so 100.00 over 3 is
// 33.34, 33.33, 33.33. It returns nil when n < 1.
func (m Money) Allocate(n int) []Money {
	if n < 1 {
		return nil
	}
	base := m.minor / int64(n)
	rem := m.minor % int64(n)
	step := int64(1)
	if rem < 0 {
		rem, step = -rem, -1
	}
	shares := make([]Money, n)
	for i := range shares {
		shares[i] = Money{minor: base}
		if int64(i) < rem {
			shares[i].minor += step
		}
	}
	return shares
}

// MarshalJSON writes the amount as a decimal string, e.g. "33.34".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number. Numbers are read
// as decimal text, not as float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Zero
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as int64 minor units.
func (m Money) Value() (driver.Value, error) {
	return m.minor, nil
}

// Scan reads int64 minor units.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		m.minor = v
		return nil
	case nil:
		*m = Zero
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalid, src)
	}
}
