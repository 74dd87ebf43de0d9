// Package tax computes progressive bracket taxes on payouts, work income
// and gifts.
package tax

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Category selects which bracket table applies to an amount.
type Category int

const (
	// Income applies to work rewards.
	Income Category = iota
	// Securities applies to game winnings, jackpot payouts included.
	Securities
	// Gift applies to transfers between users.
	Gift
)

// String returns the category name used in logs and config keys.
func (c Category) String() string {
	switch c {
	case Income:
		return "income"
	case Securities:
		return "securities"
	case Gift:
		return "gift"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Table validation errors.
var (
	ErrEmptyTable       = errors.New("tax table is empty")
	ErrNotDescending    = errors.New("tax thresholds must be strictly descending")
	ErrMissingZeroFloor = errors.New("tax table must end with a zero threshold")
	ErrInvalidRate      = errors.New("tax rate must be between 0 and 1")
	ErrUnknownCategory  = errors.New("unknown tax category")
)

// Bracket charges Rate on an amount strictly greater than Threshold.
type Bracket struct {
	Threshold int64
	Rate      decimal.Decimal
}

// Table is a list of brackets ordered by descending threshold.
type Table []Bracket

// NewTable validates brackets and returns them as a Table.
func NewTable(brackets ...Bracket) (Table, error) {
	if len(brackets) == 0 {
		return nil, ErrEmptyTable
	}
	one := decimal.NewFromInt(1)
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return nil, fmt.Errorf("%w: bracket %d has rate %s", ErrInvalidRate, i, b.Rate)
		}
		if i > 0 && b.Threshold >= brackets[i-1].Threshold {
			return nil, fmt.Errorf("%w: %d follows %d", ErrNotDescending, b.Threshold, brackets[i-1].Threshold)
		}
	}
	if brackets[len(brackets)-1].Threshold != 0 {
		return nil, ErrMissingZeroFloor
	}
	return Table(brackets), nil
}

// Tax returns floor(amount * rate) for the first bracket whose threshold
// amount strictly exceeds. Non-positive amounts are never taxed.
func (t Table) Tax(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	b, ok := lo.Find(t, func(b Bracket) bool { return amount > b.Threshold })
	if !ok {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(b.Rate).Floor().IntPart()
}

// Rate returns the rate that applies to amount.
func (t Table) Rate(amount int64) decimal.Decimal {
	if amount <= 0 {
		return decimal.Zero
	}
	b, ok := lo.Find(t, func(b Bracket) bool { return amount > b.Threshold })
	if !ok {
		return decimal.Zero
	}
	return b.Rate
}

// Calculator holds one table per category.
type Calculator struct {
	tables map[Category]Table
}

// New builds a calculator from the three bracket tables.
func New(income, securities, gift Table) *Calculator {
	return &Calculator{tables: map[Category]Table{
		Income:     income,
		Securities: securities,
		Gift:       gift,
	}}
}

// Default returns a calculator with the built-in bracket tables.
func Default() *Calculator {
	return New(DefaultIncome(), DefaultSecurities(), DefaultGift())
}

// Tax returns the tax owed on amount in category c.
func (c *Calculator) Tax(amount int64, cat Category) int64 {
	t, ok := c.tables[cat]
	if !ok {
		return 0
	}
	return t.Tax(amount)
}

// Table returns the bracket table for a category.
func (c *Calculator) Table(cat Category) (Table, error) {
	t, ok := c.tables[cat]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}
	return t, nil
}

// AfterTax returns the amount left once its tax is deducted, together with the tax.
func (c *Calculator) AfterTax(amount int64, cat Category) (net, tax int64) {
	tax = c.Tax(amount, cat)
	return amount - tax, tax
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultIncome is the work income table.
func DefaultIncome() Table {
	return Table{
		{Threshold: 1_000_000_000, Rate: rate("0.45")},
		{Threshold: 500_000_000, Rate: rate("0.42")},
		{Threshold: 300_000_000, Rate: rate("0.40")},
		{Threshold: 150_000_000, Rate: rate("0.38")},
		{Threshold: 88_000_000, Rate: rate("0.35")},
		{Threshold: 46_000_000, Rate: rate("0.24")},
		{Threshold: 12_000_000, Rate: rate("0.15")},
		{Threshold: 0, Rate: rate("0.06")},
	}
}

// DefaultSecurities is the game winnings table.
func DefaultSecurities() Table {
	return Table{
		{Threshold: 1_000_000_000, Rate: rate("0.10")},
		{Threshold: 100_000_000, Rate: rate("0.05")},
		{Threshold: 10_000_000, Rate: rate("0.02")},
		{Threshold: 0, Rate: rate("0")},
	}
}

// DefaultGift is the transfer table.
func DefaultGift() Table {
	return Table{
		{Threshold: 3_000_000_000, Rate: rate("0.50")},
		{Threshold: 1_000_000_000, Rate: rate("0.40")},
		{Threshold: 500_000_000, Rate: rate("0.30")},
		{Threshold: 100_000_000, Rate: rate("0.20")},
		{Threshold: 0, Rate: rate("0.10")},
	}
}
