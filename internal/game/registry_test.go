package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/baccarat"
	"telegram-casino-bot/internal/game/blackjack"
	"telegram-casino-bot/internal/game/coin"
	"telegram-casino-bot/internal/game/dice"
	"telegram-casino-bot/internal/game/indianpoker"
)

func TestRegistry(t *testing.T) {
	r := game.NewRegistry()
	for _, g := range []game.Game{coin.New(), dice.New(), blackjack.New(), baccarat.New(), indianpoker.New()} {
		require.NoError(t, r.Register(g))
	}

	assert.Equal(t, 5, r.Count())
	assert.Equal(t, []string{"baccarat", "blackjack", "coin", "dice", "indian"}, r.Commands())

	g, ok := r.Get("coin")
	require.True(t, ok)
	assert.Equal(t, game.Coin, g.Type())

	g, ok = r.ByType(game.IndianPoker)
	require.True(t, ok)
	assert.Equal(t, "indian", g.Command())

	_, ok = r.Get("slot")
	assert.False(t, ok)
	_, ok = r.ByType(game.Jackpot)
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := game.NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Zero(t, r.Count())
}

func TestType(t *testing.T) {
	for _, typ := range game.Types() {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, game.Type("slot").Valid())

	assert.True(t, game.Blackjack.PenalizeTimeout())
	assert.True(t, game.Baccarat.PenalizeTimeout())
	assert.True(t, game.IndianPoker.PenalizeTimeout())
	assert.False(t, game.Coin.PenalizeTimeout())
	assert.False(t, game.Dice.PenalizeTimeout())
}

func TestPromptHasChoice(t *testing.T) {
	p := game.Prompt{Choices: []game.Choice{{Key: "hit"}, {Key: "stand"}}}
	assert.True(t, p.HasChoice("stand"))
	assert.False(t, p.HasChoice("double"))
}
