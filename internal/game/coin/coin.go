// Package coin implements the coin flip game.
package coin

import (
	"context"
	"fmt"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/pkg/random"
)

// Side is a coin face.
type Side string

const (
	Heads Side = "앞"
	Tails Side = "뒤"
)

// Flip returns a uniformly random side.
func Flip() Side {
	if random.Intn(2) == 0 {
		return Heads
	}
	return Tails
}

// Resolve returns Win if guess matches the flipped side.
func Resolve(guess, side Side) game.Outcome {
	if guess == side {
		return game.Win
	}
	return game.Lose
}

// Game implements game.Game for the coin flip.
type Game struct {
	flip func() Side
}

// New creates a coin flip game.
func New() *Game {
	return NewWith(Flip)
}

// NewWith creates a coin flip game that uses flip instead of Flip.
func NewWith(flip func() Side) *Game {
	return &Game{flip: flip}
}

func (g *Game) Type() game.Type     { return game.Coin }
func (g *Game) Name() string        { return "동전 던지기" }
func (g *Game) Command() string     { return "coin" }
func (g *Game) Description() string { return "앞 또는 뒤를 맞히면 배팅액에 배율을 곱한 만큼 얻습니다" }

// Play asks for a guess, then flips.
func (g *Game) Play(ctx context.Context, table game.Table, bet int64) (*game.Result, error) {
	answer, err := table.Ask(ctx, game.Prompt{
		Text: fmt.Sprintf("🪙 %d 코인을 걸었습니다. 앞일까요, 뒤일까요?", bet),
		Choices: []game.Choice{
			{Key: string(Heads), Label: "앞"},
			{Key: string(Tails), Label: "뒤"},
		},
	})
	if err != nil {
		return nil, err
	}

	guess := Side(answer)
	side := g.flip()
	return &game.Result{
		Outcome: Resolve(guess, side),
		Summary: fmt.Sprintf("🪙 선택: %s / 결과: %s", guess, side),
		Details: map[string]any{"guess": string(guess), "side": string(side)},
	}, nil
}
