package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary value (single currency)
// =============================================================================

// Money is a monetary amount backed by decimal.Decimal. Multi-currency
// handling is out of scope; all amounts share the account's currency.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money        { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money   { return Money{Value: decimal.NewFromInt(value)} }
func ZeroMoney() Money                    { return Money{Value: decimal.Zero} }

// MustParseMoney parses a decimal string, returning zero on malformed input.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money         { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool              { return m.Value.IsZero() }
func (m Money) IsNegative() bool          { return m.Value.IsNegative() }
func (m Money) IsPositive() bool          { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool        { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool  { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool     { return m.Value.LessThan(o.Value) }
func (m Money) LessThanOrEqual(o Money) bool { return m.Value.LessThanOrEqual(o.Value) }
func (m Money) Min(o Money) Money         { if m.LessThan(o) { return m }; return o }

// Round2 rounds to two decimal places. Presentation only; never fed back
// into running state.
func (m Money) Round2() Money { return Money{Value: m.Value.Round(2)} }

// StringFixed2 renders with exactly two decimal places.
func (m Money) StringFixed2() string { return m.Value.StringFixed(2) }

// Float64 returns the value rounded to two decimal places as a float.
// For JSON/chart presentation.
func (m Money) Float64() float64 {
	f, _ := m.Value.Round(2).Float64()
	return f
}

func (m Money) String() string { return m.Value.String() }

// =============================================================================
// PERCENT - Annual percentage rate
// =============================================================================

// Percent is an annual rate expressed in percent (13.66 means 13.66% p.a.).
type Percent struct {
	Value decimal.Decimal
}

func NewPercent(value float64) Percent { return Percent{Value: decimal.NewFromFloat(value)} }

// MustParsePercent parses a decimal string, returning zero on malformed input.
func MustParsePercent(s string) Percent {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{Value: decimal.Zero}
	}
	return Percent{Value: d}
}

func (p Percent) Sub(o Percent) Percent { return Percent{Value: p.Value.Sub(o.Value)} }
func (p Percent) IsNegative() bool      { return p.Value.IsNegative() }
func (p Percent) Equal(o Percent) bool  { return p.Value.Equal(o.Value) }

func (p Percent) Round2() Percent { return Percent{Value: p.Value.Round(2)} }

func (p Percent) StringFixed2() string { return p.Value.StringFixed(2) }

func (p Percent) Float64() float64 {
	f, _ := p.Value.Round(2).Float64()
	return f
}

func (p Percent) String() string { return p.Value.String() }
