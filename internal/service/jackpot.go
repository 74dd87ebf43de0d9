package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/random"
	"telegram-casino-bot/internal/tax"
)

// Jackpot errors.
var (
	ErrJackpotBetTooSmall = errors.New("jackpot bet too small")
	ErrJackpotBetTooLarge = errors.New("jackpot bet too large")
)

// JackpotConfig tunes the jackpot pool.
type JackpotConfig struct {
	Initial      int64
	MinBet       int64
	MaxBet       int64 // exclusive
	WinChance    int   // parts per million
	Contribution decimal.Decimal
	WinCooldown  time.Duration
}

// JackpotResult describes one jackpot play.
type JackpotResult struct {
	Bet          int64
	Contribution int64
	Won          bool
	Payout       int64
	Tax          int64
	Credited     int64
	Balance      int64
	Pool         int64
}

// JackpotPool is the per-server shared pot.
type JackpotPool struct {
	ledger *Ledger
	taxes  *tax.Calculator
	cfg    JackpotConfig
	chance func(ppm int) bool
}

// NewJackpotPool creates a JackpotPool on top of ledger.
func NewJackpotPool(ledger *Ledger, taxes *tax.Calculator, cfg JackpotConfig) *JackpotPool {
	return &JackpotPool{ledger: ledger, taxes: taxes, cfg: cfg, chance: random.Chance}
}

// Config returns the pool settings.
func (p *JackpotPool) Config() JackpotConfig {
	return p.cfg
}

// Amount returns the current pool of serverID.
func (p *JackpotPool) Amount(ctx context.Context, serverID int64) (int64, error) {
	return p.ledger.store.GetJackpot(ctx, serverID, p.cfg.Initial)
}

// Contribute adds amount to the pool and returns the new total.
func (p *JackpotPool) Contribute(ctx context.Context, serverID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var pool int64
	err := p.ledger.Exclusive(ctx, nil, serverID, func(r Repos) error {
		var err error
		pool, err = r.AddJackpot(ctx, serverID, amount, p.cfg.Initial)
		return err
	})
	return pool, err
}

// ValidateBet applies the jackpot bet rules against a known balance.
func (p *JackpotPool) ValidateBet(bet, balance int64) error {
	switch {
	case bet < p.cfg.MinBet:
		return fmt.Errorf("%w: minimum is %d", ErrJackpotBetTooSmall, p.cfg.MinBet)
	case bet >= p.cfg.MaxBet:
		return fmt.Errorf("%w: must be below %d", ErrJackpotBetTooLarge, p.cfg.MaxBet)
	case bet > balance:
		return ErrInsufficientFunds
	case bet*100 < balance:
		return fmt.Errorf("%w: must be at least 1%% of your balance", ErrJackpotBetTooSmall)
	}
	return nil
}

// Play debits bet, feeds the pool and draws for the jackpot. A win pays a
// tenth of the pool less securities tax and stamps the win cooldown.
// The gameAction cooldown is stamped on every play.
func (p *JackpotPool) Play(ctx context.Context, userID, serverID, bet int64, gameAction string) (*JackpotResult, error) {
	res := &JackpotResult{Bet: bet}

	err := p.ledger.Exclusive(ctx, []int64{userID}, serverID, func(r Repos) error {
		balance, err := r.GetBalance(ctx, userID, serverID)
		if err != nil {
			return err
		}
		balance -= p.ledger.Staked(userID, serverID)
		if err := p.ValidateBet(bet, balance); err != nil {
			return err
		}

		res.Contribution = decimal.NewFromInt(bet).Mul(p.cfg.Contribution).Floor().IntPart()
		if res.Balance, err = r.AddBalance(ctx, userID, serverID, -bet); err != nil {
			return err
		}
		if res.Pool, err = r.AddJackpot(ctx, serverID, res.Contribution, p.cfg.Initial); err != nil {
			return err
		}
		if err := record(ctx, r, userID, serverID, -bet, model.TxTypeJackpotBet, "jackpot bet"); err != nil {
			return err
		}

		now := p.ledger.now()
		if err := r.StampCooldown(ctx, userID, gameAction, now); err != nil {
			return err
		}

		if !p.chance(p.cfg.WinChance) {
			return nil
		}

		res.Won = true
		res.Payout = res.Pool / 10
		res.Credited, res.Tax = p.taxes.AfterTax(res.Payout, tax.Securities)
		if res.Balance, err = r.AddBalance(ctx, userID, serverID, res.Credited); err != nil {
			return err
		}
		if res.Pool, err = r.AddJackpot(ctx, serverID, -res.Payout, p.cfg.Initial); err != nil {
			return err
		}
		if err := r.StampCooldown(ctx, userID, model.ActionJackpotWin, now); err != nil {
			return err
		}
		return record(ctx, r, userID, serverID, res.Credited, model.TxTypeJackpotWin,
			fmt.Sprintf("jackpot payout %d (tax %d)", res.Payout, res.Tax))
	})
	if err != nil {
		return nil, err
	}

	event := log.Info()
	if !res.Won {
		event = log.Debug()
	}
	event.
		Int64("user_id", userID).
		Int64("server_id", serverID).
		Int64("bet", bet).
		Bool("won", res.Won).
		Int64("payout", res.Payout).
		Int64("pool", res.Pool).
		Msg("Jackpot played")

	return res, nil
}

// Reset sets the pool of serverID back to the initial amount.
func (p *JackpotPool) Reset(ctx context.Context, serverID int64) error {
	return p.ledger.Exclusive(ctx, nil, serverID, func(r Repos) error {
		return r.SetJackpot(ctx, serverID, p.cfg.Initial)
	})
}

// ResetAll resets every known pool and returns how many were reset.
// It keeps going past individual failures and returns them joined.
func (p *JackpotPool) ResetAll(ctx context.Context) (int, error) {
	pools, err := p.ledger.store.ListJackpots(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	n := 0
	for _, j := range pools {
		if err := p.Reset(ctx, j.ServerID); err != nil {
			errs = append(errs, fmt.Errorf("server %d: %w", j.ServerID, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
