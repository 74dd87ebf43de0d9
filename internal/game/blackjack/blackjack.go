// Package blackjack implements blackjack against a dealer that stands on 17.
package blackjack

import (
	"context"
	"fmt"
	"strings"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/cards"
)

const (
	// Target is the best possible hand value.
	Target = 21
	// DealerStand is the value at which the dealer stops drawing.
	DealerStand = 17

	ChoiceHit   = "hit"
	ChoiceStand = "stand"
)

// CardValue counts faces as 10 and aces as 11.
func CardValue(c cards.Card) int {
	switch {
	case c.Rank == cards.Ace:
		return 11
	case c.Rank.IsFace():
		return 10
	default:
		return int(c.Rank)
	}
}

// HandValue sums hand, downgrading aces from 11 to 1 while the total
// exceeds 21.
func HandValue(hand []cards.Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		total += CardValue(c)
		if c.Rank == cards.Ace {
			aces++
		}
	}
	for total > Target && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Busted reports whether hand is over 21.
func Busted(hand []cards.Card) bool {
	return HandValue(hand) > Target
}

// Compare resolves a finished round from the player's side.
func Compare(player, dealer []cards.Card) game.Outcome {
	p, d := HandValue(player), HandValue(dealer)
	switch {
	case p > Target:
		return game.Lose
	case d > Target:
		return game.Win
	case p > d:
		return game.Win
	case p < d:
		return game.Lose
	default:
		return game.Push
	}
}

// Game implements game.Game for blackjack.
type Game struct {
	newDeck func() *cards.Deck
}

// New creates a blackjack game using freshly shuffled decks.
func New() *Game {
	return &Game{newDeck: cards.NewDeck}
}

func (g *Game) Type() game.Type     { return game.Blackjack }
func (g *Game) Name() string        { return "블랙잭" }
func (g *Game) Command() string     { return "blackjack" }
func (g *Game) Description() string { return "21에 가깝게 만들어 딜러를 이기세요. 딜러는 17 이상에서 멈춥니다" }

// Play deals two cards each, loops on hit/stand, then plays the dealer.
func (g *Game) Play(ctx context.Context, table game.Table, bet int64) (*game.Result, error) {
	deck := g.newDeck()

	player, err := deck.DrawN(2)
	if err != nil {
		return nil, err
	}
	dealer, err := deck.DrawN(2)
	if err != nil {
		return nil, err
	}

	for HandValue(player) < Target {
		answer, err := table.Ask(ctx, game.Prompt{
			Text: fmt.Sprintf("🃏 블랙잭 (배팅 %d)\n%s", bet, board(player, dealer, true)),
			Choices: []game.Choice{
				{Key: ChoiceHit, Label: "히트"},
				{Key: ChoiceStand, Label: "스탠드"},
			},
		})
		if err != nil {
			return nil, err
		}
		if answer == ChoiceStand {
			break
		}
		c, err := deck.Draw()
		if err != nil {
			return nil, err
		}
		player = append(player, c)
	}

	if !Busted(player) {
		for HandValue(dealer) < DealerStand {
			c, err := deck.Draw()
			if err != nil {
				return nil, err
			}
			dealer = append(dealer, c)
		}
	}

	return &game.Result{
		Outcome: Compare(player, dealer),
		Summary: board(player, dealer, false),
		Details: map[string]any{
			"player": HandValue(player),
			"dealer": HandValue(dealer),
		},
	}, nil
}

func board(player, dealer []cards.Card, hideHole bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "플레이어: %s (%d)\n", cards.Format(player), HandValue(player))
	if hideHole {
		fmt.Fprintf(&b, "딜러: %s ??", dealer[0])
	} else {
		fmt.Fprintf(&b, "딜러: %s (%d)", cards.Format(dealer), HandValue(dealer))
	}
	return b.String()
}
