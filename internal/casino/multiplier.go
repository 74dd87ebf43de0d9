package casino

import (
	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/pkg/random"
)

var hundred = decimal.NewFromInt(100)

// Range is an inclusive multiplier range drawn in 0.01 steps.
type Range struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// NewRange builds a range from float bounds, rounding to hundredths.
func NewRange(low, high float64) Range {
	return Range{Low: decimal.NewFromFloat(low).Round(2), High: decimal.NewFromFloat(high).Round(2)}
}

// Draw returns a uniform multiplier in r.
func (r Range) Draw() decimal.Decimal {
	steps := r.High.Sub(r.Low).Mul(hundred).IntPart()
	if steps <= 0 {
		return r.Low
	}
	return r.Low.Add(decimal.NewFromInt(random.Int64Range(0, steps)).Div(hundred))
}

// Contains reports whether m lies within r.
func (r Range) Contains(m decimal.Decimal) bool {
	return m.GreaterThanOrEqual(r.Low) && m.LessThanOrEqual(r.High)
}

// Winnings returns floor(bet * multiplier).
func Winnings(bet int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(bet).Mul(multiplier).Floor().IntPart()
}
