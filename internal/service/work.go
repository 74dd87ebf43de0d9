package service

import (
	"context"
	"fmt"
	"time"

	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/random"
	"telegram-casino-bot/internal/tax"
)

// WorkConfig tunes the work command.
type WorkConfig struct {
	MinReward int64
	MaxReward int64
	Cooldown  time.Duration
}

// WorkResult reports one paid shift.
type WorkResult struct {
	Gross   int64
	Tax     int64
	Net     int64
	Balance int64
}

// WorkService pays a random income, taxed as income, once per cooldown.
type WorkService struct {
	ledger *Ledger
	taxes  *tax.Calculator
	cfg    WorkConfig
	reward func(lo, hi int64) int64
}

// NewWorkService creates a WorkService.
func NewWorkService(ledger *Ledger, taxes *tax.Calculator, cfg WorkConfig) *WorkService {
	return &WorkService{ledger: ledger, taxes: taxes, cfg: cfg, reward: random.Int64Range}
}

// Work pays the user. It returns a *CooldownError if called too soon.
func (s *WorkService) Work(ctx context.Context, userID, serverID int64) (*WorkResult, error) {
	gross := s.reward(s.cfg.MinReward, s.cfg.MaxReward)
	net, incomeTax := s.taxes.AfterTax(gross, tax.Income)

	res, err := s.ledger.Settle(ctx, Settlement{
		UserID:      userID,
		ServerID:    serverID,
		Delta:       net,
		Checks:      []CooldownCheck{{Action: model.ActionWork, Window: s.cfg.Cooldown}},
		Stamps:      []string{model.ActionWork},
		TxType:      model.TxTypeWork,
		Description: fmt.Sprintf("work %d (tax %d)", gross, incomeTax),
	})
	if err != nil {
		return nil, err
	}
	return &WorkResult{Gross: gross, Tax: incomeTax, Net: net, Balance: res.Balance}, nil
}
