// Package game defines the game interfaces and registry for the casino bot.
// Adding a new game only requires implementing Game and registering it.
package game

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/tax"
)

// Type identifies a game. The set is closed.
type Type string

const (
	Coin        Type = "coin"
	Dice        Type = "dice"
	Blackjack   Type = "blackjack"
	Baccarat    Type = "baccarat"
	IndianPoker Type = "indian_poker"
	Jackpot     Type = "jackpot"
)

// Types returns every game type.
func Types() []Type {
	return []Type{Coin, Dice, Blackjack, Baccarat, IndianPoker, Jackpot}
}

// Valid reports whether t is a known game type.
func (t Type) Valid() bool {
	switch t {
	case Coin, Dice, Blackjack, Baccarat, IndianPoker, Jackpot:
		return true
	}
	return false
}

// TaxCategory returns the bracket table for winnings. Every game win is
// taxed like securities income.
func (t Type) TaxCategory() tax.Category {
	return tax.Securities
}

// PenalizeTimeout reports whether walking away from a pending choice
// forfeits the bet. Multi-step card games do; single-pick games just cancel.
func (t Type) PenalizeTimeout() bool {
	switch t {
	case Blackjack, Baccarat, IndianPoker:
		return true
	}
	return false
}

// Interaction errors.
var (
	// ErrTimeout is returned by a Table when the player did not choose in time.
	ErrTimeout = errors.New("choice timed out")
	// ErrInvalidChoice is returned when a Table answers with an unknown key.
	ErrInvalidChoice = errors.New("invalid choice")
)

// Outcome is how a play ended for the player.
type Outcome int

const (
	Lose Outcome = iota
	Win
	Push // stake returned
	Fold // half the stake forfeited
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Push:
		return "push"
	case Fold:
		return "fold"
	default:
		return "lose"
	}
}

// Result represents the outcome of a game play.
type Result struct {
	Outcome Outcome
	// Multiplier overrides the configured random profit multiplier when non-zero.
	Multiplier decimal.Decimal
	// Summary describes the final board (cards, faces) for the player.
	Summary string
	Details map[string]any
}

// Choice is one selectable answer of a Prompt.
type Choice struct {
	Key   string
	Label string
}

// Prompt asks the player to pick one of Choices.
type Prompt struct {
	Text    string
	Choices []Choice
}

// Table is the player's side of an interactive game.
type Table interface {
	// Ask presents p and blocks for the player's choice key. It returns
	// ErrTimeout if the player does not answer in time.
	Ask(ctx context.Context, p Prompt) (string, error)
	// Show displays intermediate state without waiting.
	Show(ctx context.Context, text string) error
}

// Game defines the interface that all games must implement.
type Game interface {
	Type() Type
	// Name returns the display name.
	Name() string
	// Command returns the chat command that starts the game.
	Command() string
	Description() string
	// Play runs one interactive play-through for an already validated bet.
	// Errors from the Table, ErrTimeout included, are returned unchanged.
	Play(ctx context.Context, table Table, bet int64) (*Result, error)
}

// HasChoice reports whether key is one of p's choices.
func (p Prompt) HasChoice(key string) bool {
	for _, c := range p.Choices {
		if c.Key == key {
			return true
		}
	}
	return false
}
