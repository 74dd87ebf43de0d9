// Package baccarat implements punto banco with the simplified third
// card rule: a side whose first two cards total 5 or less draws one more.
package baccarat

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/cards"
)

// Side is what the player can bet on.
type Side string

const (
	Player Side = "player"
	Banker Side = "banker"
	Tie    Side = "tie"
)

// DrawLimit is the highest two-card value that takes a third card.
const DrawLimit = 5

// TieMultiplier is the fixed profit multiplier of a winning tie bet.
var TieMultiplier = decimal.NewFromInt(8)

// CardValue counts tens and faces as 0 and aces as 1.
func CardValue(c cards.Card) int {
	if c.Rank >= 10 {
		return 0
	}
	return int(c.Rank)
}

// HandValue is the card sum modulo 10.
func HandValue(hand []cards.Card) int {
	total := 0
	for _, c := range hand {
		total += CardValue(c)
	}
	return total % 10
}

// NeedsThirdCard reports whether a two-card hand draws.
func NeedsThirdCard(hand []cards.Card) bool {
	return len(hand) == 2 && HandValue(hand) <= DrawLimit
}

// Winner returns the winning side of a finished coup.
func Winner(player, banker []cards.Card) Side {
	p, b := HandValue(player), HandValue(banker)
	switch {
	case p > b:
		return Player
	case b > p:
		return Banker
	default:
		return Tie
	}
}

// Resolve settles a bet on side against the winning side. A tie returns
// player and banker stakes.
func Resolve(side, winner Side) game.Outcome {
	switch {
	case side == winner:
		return game.Win
	case winner == Tie:
		return game.Push
	default:
		return game.Lose
	}
}

// Game implements game.Game for baccarat.
type Game struct {
	newDeck func() *cards.Deck
}

// New creates a baccarat game using freshly shuffled decks.
func New() *Game {
	return &Game{newDeck: cards.NewDeck}
}

func (g *Game) Type() game.Type     { return game.Baccarat }
func (g *Game) Name() string        { return "바카라" }
func (g *Game) Command() string     { return "baccarat" }
func (g *Game) Description() string { return "플레이어, 뱅커, 타이 중 하나에 거세요. 타이는 8배입니다" }

// Play takes the side bet, then deals player and banker.
func (g *Game) Play(ctx context.Context, table game.Table, bet int64) (*game.Result, error) {
	answer, err := table.Ask(ctx, game.Prompt{
		Text: fmt.Sprintf("🎴 바카라 (배팅 %d)\n어디에 거시겠습니까?", bet),
		Choices: []game.Choice{
			{Key: string(Player), Label: "플레이어"},
			{Key: string(Banker), Label: "뱅커"},
			{Key: string(Tie), Label: "타이"},
		},
	})
	if err != nil {
		return nil, err
	}
	side := Side(answer)

	deck := g.newDeck()
	player, err := deck.DrawN(2)
	if err != nil {
		return nil, err
	}
	banker, err := deck.DrawN(2)
	if err != nil {
		return nil, err
	}
	if err := table.Show(ctx, board("🎴 첫 두 장", player, banker)); err != nil {
		return nil, err
	}

	for _, hand := range []*[]cards.Card{&player, &banker} {
		if !NeedsThirdCard(*hand) {
			continue
		}
		c, err := deck.Draw()
		if err != nil {
			return nil, err
		}
		*hand = append(*hand, c)
	}

	winner := Winner(player, banker)
	res := &game.Result{
		Outcome: Resolve(side, winner),
		Summary: board(fmt.Sprintf("🎴 선택: %s / 승리: %s", label(side), label(winner)), player, banker),
		Details: map[string]any{
			"side":   string(side),
			"winner": string(winner),
			"player": HandValue(player),
			"banker": HandValue(banker),
		},
	}
	if side == Tie && winner == Tie {
		res.Multiplier = TieMultiplier
	}
	return res, nil
}

func board(title string, player, banker []cards.Card) string {
	return fmt.Sprintf("%s\n플레이어: %s (%d)\n뱅커: %s (%d)",
		title, cards.Format(player), HandValue(player), cards.Format(banker), HandValue(banker))
}

func label(s Side) string {
	switch s {
	case Player:
		return "플레이어"
	case Banker:
		return "뱅커"
	default:
		return "타이"
	}
}
