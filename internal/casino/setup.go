package casino

import (
	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/baccarat"
	"telegram-casino-bot/internal/game/blackjack"
	"telegram-casino-bot/internal/game/coin"
	"telegram-casino-bot/internal/game/dice"
	"telegram-casino-bot/internal/game/indianpoker"
)

// DefaultRegistry registers every interactive game.
func DefaultRegistry() (*game.Registry, error) {
	r := game.NewRegistry()
	for _, g := range []game.Game{coin.New(), dice.New(), blackjack.New(), baccarat.New(), indianpoker.New()} {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ConfigFrom maps the casino settings onto a coordinator Config.
func ConfigFrom(cc *config.CasinoConfig) Config {
	cfg := Config{
		Limits:      Limits{Min: cc.MinBet, Max: cc.MaxBet},
		Cooldown:    cc.GameCooldown(),
		Multipliers: make(map[game.Type]Range, len(cc.Games)),
	}
	for name, r := range cc.Games {
		low, high := r.Decimal()
		cfg.Multipliers[game.Type(name)] = Range{Low: low, High: high}
	}
	return cfg
}
