package billing

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY - Decimal amount with a currency
// =============================================================================

// Money is a monetary amount. All fee and payment arithmetic goes through
// decimal.Decimal; never floats.
type Money struct {
	Value    decimal.Decimal
	Currency Currency
}

type Currency string

const (
	CurrencyMYR Currency = "MYR"
	CurrencyUSD Currency = "USD"
	CurrencySGD Currency = "SGD"
)

// DefaultCurrency applies when a record carries no explicit currency.
const DefaultCurrency = CurrencyMYR

func NewMoney(value float64, currency Currency) Money {
	return Money{Value: decimal.NewFromFloat(value), Currency: currency}
}

func NewMoneyFromInt(value int, currency Currency) Money {
	return Money{Value: decimal.NewFromInt(int64(value)), Currency: currency}
}

// MustParseDecimal parses a decimal string, returning zero on malformed
// input. Malformed stored amounts contribute nothing to sums.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Zero() Money           { return Money{Value: decimal.Zero, Currency: m.Currency} }
func (m Money) Add(b Money) Money     { return Money{Value: m.Value.Add(b.Value), Currency: m.Currency} }
func (m Money) Sub(b Money) Money     { return Money{Value: m.Value.Sub(b.Value), Currency: m.Currency} }
func (m Money) Neg() Money            { return Money{Value: m.Value.Neg(), Currency: m.Currency} }
func (m Money) IsNegative() bool      { return m.Value.IsNegative() }
func (m Money) IsZero() bool          { return m.Value.IsZero() }
func (m Money) IsPositive() bool      { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool        { return m.Value.GreaterThan(b.Value) }
func (m Money) GreaterThanOrEqual(b Money) bool { return m.Value.GreaterThanOrEqual(b.Value) }
func (m Money) LessThan(b Money) bool           { return m.Value.LessThan(b.Value) }

func (m Money) Max(b Money) Money {
	if m.GreaterThan(b) {
		return m
	}
	return b
}

func (m Money) String() string { return m.Value.StringFixed(2) + " " + string(m.Currency) }

// ZeroMoney returns zero in the default currency.
func ZeroMoney() Money { return Money{Value: decimal.Zero, Currency: DefaultCurrency} }
