// Package casino runs game sessions: bet parsing and validation,
// admission, cooldown gating, the interactive play and settlement.
package casino

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/lock"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
	"telegram-casino-bot/internal/tax"
)

// Config tunes the coordinator.
type Config struct {
	Limits      Limits
	Cooldown    time.Duration
	Multipliers map[game.Type]Range
}

// Request starts one play.
type Request struct {
	// SessionID correlates the play with its chat table. A new one is
	// generated when it is nil.
	SessionID uuid.UUID
	UserID    int64
	ServerID  int64
	Game      game.Type
	BetArg    string
}

// Coordinator owns the admission registry and drives every game session.
type Coordinator struct {
	games     *game.Registry
	ledger    *service.Ledger
	cooldowns *service.CooldownGate
	jackpot   *service.JackpotPool
	taxes     *tax.Calculator
	admission *lock.Admission
	cfg       Config
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(
	games *game.Registry,
	ledger *service.Ledger,
	cooldowns *service.CooldownGate,
	jackpot *service.JackpotPool,
	taxes *tax.Calculator,
	cfg Config,
) *Coordinator {
	return &Coordinator{
		games:     games,
		ledger:    ledger,
		cooldowns: cooldowns,
		jackpot:   jackpot,
		taxes:     taxes,
		admission: lock.NewAdmission(),
		cfg:       cfg,
	}
}

// Active returns the game the user is currently playing, if any.
func (c *Coordinator) Active(userID int64) (string, bool) {
	return c.admission.Active(userID)
}

// Games returns the registered games.
func (c *Coordinator) Games() *game.Registry {
	return c.games
}

// Play runs one game session for req against table. The admission slot
// is released on every return path.
func (c *Coordinator) Play(ctx context.Context, req Request, table game.Table) (*Outcome, error) {
	g, ok := c.games.ByType(req.Game)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, req.Game)
	}

	if !c.admission.Start(req.UserID, string(req.Game)) {
		return nil, ErrGameInProgress
	}
	defer c.admission.End(req.UserID)

	balance, err := c.ledger.GetBalance(ctx, req.UserID, req.ServerID)
	if err != nil {
		return nil, err
	}
	bet, err := ParseBet(req.BetArg, balance)
	if err != nil {
		return nil, err
	}
	if err := c.cfg.Limits.Validate(bet, balance); err != nil {
		return nil, err
	}
	if err := c.cooldowns.Require(ctx, req.UserID, string(req.Game), c.cfg.Cooldown); err != nil {
		return nil, err
	}

	// The bet stays staked until settlement so it cannot be sent away mid-game.
	stake, err := c.ledger.Reserve(ctx, req.UserID, req.ServerID, bet)
	if err != nil {
		return nil, err
	}
	defer stake.Release()

	sessionID := req.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	logger := log.With().
		Str("session_id", sessionID.String()).
		Int64("user_id", req.UserID).
		Int64("server_id", req.ServerID).
		Str("game", string(req.Game)).
		Int64("bet", bet).
		Logger()
	logger.Debug().Msg("Game session started")

	timedOut := false
	res, err := g.Play(ctx, table, bet)
	switch {
	case errors.Is(err, game.ErrTimeout):
		timedOut = true
		if !req.Game.PenalizeTimeout() {
			logger.Debug().Msg("Game session timed out without penalty")
			return nil, ErrTimeoutExpired
		}
		res = &game.Result{Outcome: game.Lose, Summary: "⏰ 시간 안에 선택하지 않아 배팅액을 잃었습니다."}
	case err != nil:
		logger.Error().Err(err).Msg("Game session failed")
		return nil, err
	}

	out := &Outcome{
		SessionID:   sessionID,
		Game:        req.Game,
		Result:      res.Outcome,
		TimedOut:    timedOut,
		Bet:         bet,
		Description: res.Summary,
	}
	out.Title, out.Tone = title(g, res.Outcome, timedOut)

	delta, owed, desc := int64(0), int64(0), fmt.Sprintf("%s %s", req.Game, res.Outcome)
	switch res.Outcome {
	case game.Win:
		out.Multiplier = res.Multiplier
		if out.Multiplier.IsZero() {
			out.Multiplier = c.multiplier(req.Game).Draw()
		}
		out.Winnings = Winnings(bet, out.Multiplier)
		delta, out.Tax = c.taxes.AfterTax(out.Winnings, req.Game.TaxCategory())
		desc = fmt.Sprintf("%s win x%s (tax %d)", req.Game, out.Multiplier.StringFixed(2), out.Tax)
	case game.Lose:
		delta, owed = -bet, bet
	case game.Fold:
		delta, owed = -(bet / 2), bet/2
	}
	if timedOut {
		desc = fmt.Sprintf("%s timeout penalty", req.Game)
	}

	// Settlement must not be abandoned because the player's context ended.
	settleCtx := context.WithoutCancel(ctx)
	settled, err := c.ledger.Settle(settleCtx, service.Settlement{
		UserID:       req.UserID,
		ServerID:     req.ServerID,
		Delta:        delta,
		RequireFunds: owed,
		Stake:        stake,
		Stamps:       []string{string(req.Game)},
		TxType:       string(req.Game),
		Description:  desc,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to settle game")
		return nil, err
	}
	out.Change = settled.Balance - settled.Before
	out.Balance = settled.Balance

	logger.Info().
		Str("outcome", res.Outcome.String()).
		Bool("timed_out", timedOut).
		Int64("change", out.Change).
		Int64("balance", out.Balance).
		Msg("Game session settled")

	return out, nil
}

func (c *Coordinator) multiplier(t game.Type) Range {
	if r, ok := c.cfg.Multipliers[t]; ok {
		return r
	}
	return Range{Low: decimal.NewFromInt(1), High: decimal.NewFromInt(1)}
}

// PlayJackpot wagers on the server pool. Both the jackpot play cooldown
// and the longer win cooldown must have expired.
func (c *Coordinator) PlayJackpot(ctx context.Context, userID, serverID int64, betArg string) (*Outcome, error) {
	if !c.admission.Start(userID, string(game.Jackpot)) {
		return nil, ErrGameInProgress
	}
	defer c.admission.End(userID)

	balance, err := c.ledger.GetBalance(ctx, userID, serverID)
	if err != nil {
		return nil, err
	}
	bet, err := ParseBet(betArg, balance)
	if err != nil {
		return nil, err
	}
	if err := c.jackpot.ValidateBet(bet, balance); err != nil {
		return nil, err
	}
	if err := c.cooldowns.Require(ctx, userID, string(game.Jackpot), c.cfg.Cooldown); err != nil {
		return nil, err
	}
	if err := c.cooldowns.Require(ctx, userID, model.ActionJackpotWin, c.jackpot.Config().WinCooldown); err != nil {
		var cd *service.CooldownError
		if errors.As(err, &cd) {
			return nil, fmt.Errorf("%w: %w", ErrJackpotCooldown, err)
		}
		return nil, err
	}

	res, err := c.jackpot.Play(ctx, userID, serverID, bet, string(game.Jackpot))
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		SessionID: uuid.New(),
		Game:      game.Jackpot,
		Bet:       bet,
		Balance:   res.Balance,
		Pool:      res.Pool,
	}
	if res.Won {
		out.Result = game.Win
		out.Winnings = res.Payout
		out.Tax = res.Tax
		out.Change = res.Credited - bet
		out.Title = "잭팟 당첨!"
		out.Tone = ToneJackpot
		out.Description = fmt.Sprintf("🎰 잭팟의 10%%인 %s에 당첨되었습니다!\n남은 잭팟: %s",
			money.Coins(res.Payout), money.Coins(res.Pool))
		return out, nil
	}

	out.Result = game.Lose
	out.Change = -bet
	out.Title = "잭팟 - 꽝"
	out.Tone = ToneLose
	out.Description = fmt.Sprintf("🎰 %s이(가) 잭팟에 쌓였습니다.\n현재 잭팟: %s",
		money.Coins(res.Contribution), money.Coins(res.Pool))
	return out, nil
}
