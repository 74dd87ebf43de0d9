package casino

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"telegram-casino-bot/internal/service"
)

var allInTokens = []string{"올인", "all", "allin", "all-in"}

// IsAllIn reports whether arg asks to wager the whole balance.
func IsAllIn(arg string) bool {
	return lo.Contains(allInTokens, strings.ToLower(strings.TrimSpace(arg)))
}

// ParseBet turns a bet argument into an amount. All-in tokens resolve to
// balance; digits may carry thousands separators.
func ParseBet(arg string, balance int64) (int64, error) {
	if IsAllIn(arg) {
		return balance, nil
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(arg), ",", "")
	bet, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || bet <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBet, arg)
	}
	return bet, nil
}

// Limits bounds regular game bets. Max is exclusive.
type Limits struct {
	Min int64
	Max int64
}

// Validate checks bet against the limits and the current balance.
func (l Limits) Validate(bet, balance int64) error {
	switch {
	case bet < l.Min:
		return fmt.Errorf("%w: minimum is %d", ErrBetTooLow, l.Min)
	case bet >= l.Max:
		return fmt.Errorf("%w: must be below %d", ErrBetTooHigh, l.Max)
	case bet > balance:
		return fmt.Errorf("%w: have %d, need %d", service.ErrInsufficientFunds, balance, bet)
	}
	return nil
}
