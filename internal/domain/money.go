package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// minorUnitExp is the decimal exponent of one minor unit (cents).
const minorUnitExp = -2

// Money is a monetary amount in minor units (cents).
type Money int64

// ParseMoney parses a decimal string such as "25.00" into Money.
// More than two fractional digits is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}

	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts a decimal amount into Money.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	scaled := d.Shift(-minorUnitExp)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has sub-cent precision", ErrInvalidAmount, d.String())
	}

	if !scaled.BigInt().IsInt64() {
		return 0, ErrAmountOverflow
	}

	return Money(scaled.IntPart()), nil
}

// MustMoney parses s and panics on error. Intended for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the amount as a decimal in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), minorUnitExp)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m > 0
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m < 0
}

// Add returns m + o, rejecting overflow.
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, ErrAmountOverflow
	}
	return m + o, nil
}

// Mul multiplies a unit price by a ticket quantity. This is the only place
// prices are multiplied; the result is exact in minor units.
func (m Money) Mul(quantity int) (Money, error) {
	if quantity == 0 || m == 0 {
		return 0, nil
	}

	q := int64(quantity)
	result := int64(m) * q
	if result/q != int64(m) {
		return 0, ErrAmountOverflow
	}

	return Money(result), nil
}

// ProRata returns m * part / whole, rounded down. It is used to release a
// share of a holding's cost basis; when part == whole the full amount is
// returned so no remainder is stranded.
func (m Money) ProRata(part, whole int) Money {
	if whole <= 0 || part <= 0 {
		return 0
	}
	if part >= whole {
		return m
	}

	return Money(decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromInt(int64(part))).
		Div(decimal.NewFromInt(int64(whole))).
		Floor().
		IntPart())
}
