// Package dice implements the single die guessing game.
package dice

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/pkg/random"
)

// Faces is the number of sides on the die.
const Faces = 6

var faceEmoji = [...]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// Roll returns a face in [1, 6].
func Roll() int {
	return random.IntRange(1, Faces)
}

// Resolve returns Win when guess equals the rolled face.
func Resolve(guess, face int) game.Outcome {
	if guess == face {
		return game.Win
	}
	return game.Lose
}

// DiceGame implements game.Game for the die roll.
type DiceGame struct {
	roll func() int
}

// New creates a new DiceGame.
func New() *DiceGame {
	return &DiceGame{roll: Roll}
}

// Type returns game.Dice.
func (d *DiceGame) Type() game.Type { return game.Dice }

// Name returns the game's display name.
func (d *DiceGame) Name() string { return "주사위" }

// Command returns the command that triggers this game.
func (d *DiceGame) Command() string { return "dice" }

// Description returns a brief description of the game.
func (d *DiceGame) Description() string {
	return "1부터 6 중 나올 눈을 맞히면 배팅액에 배율을 곱한 만큼 얻습니다"
}

// Play asks for a face and rolls the die.
func (d *DiceGame) Play(ctx context.Context, table game.Table, bet int64) (*game.Result, error) {
	choices := lo.Map(lo.RangeFrom(1, Faces), func(face, _ int) game.Choice {
		return game.Choice{Key: strconv.Itoa(face), Label: faceEmoji[face] + " " + strconv.Itoa(face)}
	})
	answer, err := table.Ask(ctx, game.Prompt{
		Text:    fmt.Sprintf("🎲 %d 코인을 걸었습니다. 나올 눈을 골라주세요.", bet),
		Choices: choices,
	})
	if err != nil {
		return nil, err
	}

	guess, err := strconv.Atoi(answer)
	if err != nil || guess < 1 || guess > Faces {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidChoice, answer)
	}

	face := d.roll()
	return &game.Result{
		Outcome: Resolve(guess, face),
		Summary: fmt.Sprintf("🎲 선택: %d / 결과: %s %d", guess, faceEmoji[face], face),
		Details: map[string]any{
			"guess": guess,
			"face":  face,
			"bet":   bet,
		},
	}, nil
}
