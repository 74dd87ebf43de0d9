// Package indianpoker implements one-card indian poker: the player sees
// only the dealer's card and decides whether to go or fold.
package indianpoker

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/cards"
)

const (
	ChoiceGo  = "go"
	ChoiceDie = "die"

	// MaxRank is the highest card in the 40-card deck.
	MaxRank = 10
)

// NewDeck returns a shuffled deck of ranks 1 through 10 in every suit.
func NewDeck() *cards.Deck {
	return cards.Shuffled(lo.Filter(cards.Standard(), func(c cards.Card, _ int) bool {
		return c.Rank <= MaxRank
	}))
}

// Compare resolves a called hand.
func Compare(player, dealer cards.Card) game.Outcome {
	switch {
	case player.Rank > dealer.Rank:
		return game.Win
	case player.Rank < dealer.Rank:
		return game.Lose
	default:
		return game.Push
	}
}

// Game implements game.Game for indian poker.
type Game struct {
	newDeck func() *cards.Deck
}

// New creates an indian poker game.
func New() *Game {
	return &Game{newDeck: NewDeck}
}

func (g *Game) Type() game.Type     { return game.IndianPoker }
func (g *Game) Name() string        { return "인디언 포커" }
func (g *Game) Command() string     { return "indian" }
func (g *Game) Description() string { return "딜러 카드만 보고 승부할지 정하세요. 다이하면 배팅액의 절반을 잃습니다" }

// Play deals one card each and asks go or die.
func (g *Game) Play(ctx context.Context, table game.Table, bet int64) (*game.Result, error) {
	deck := g.newDeck()
	player, err := deck.Draw()
	if err != nil {
		return nil, err
	}
	dealer, err := deck.Draw()
	if err != nil {
		return nil, err
	}

	answer, err := table.Ask(ctx, game.Prompt{
		Text: fmt.Sprintf("🪶 인디언 포커 (배팅 %d)\n딜러 카드: %s\n내 카드: ??", bet, dealer),
		Choices: []game.Choice{
			{Key: ChoiceGo, Label: "고"},
			{Key: ChoiceDie, Label: "다이"},
		},
	})
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("🪶 내 카드: %s / 딜러 카드: %s", player, dealer)
	details := map[string]any{
		"player": int(player.Rank),
		"dealer": int(dealer.Rank),
		"choice": answer,
	}
	if answer == ChoiceDie {
		return &game.Result{Outcome: game.Fold, Summary: summary, Details: details}, nil
	}
	return &game.Result{Outcome: Compare(player, dealer), Summary: summary, Details: details}, nil
}
