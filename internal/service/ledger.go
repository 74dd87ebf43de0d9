package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/lock"
	"telegram-casino-bot/internal/tax"
)

// LedgerConfig holds the ledger limits.
type LedgerConfig struct {
	JackpotInitial int64 // pool floor and reset value
	TransferMin    int64 // exclusive
	TransferMax    int64 // exclusive
}

// Ledger owns every balance and jackpot mutation. Users are locked in
// ascending ID order, then the server, and the whole change runs in one
// store transaction.
type Ledger struct {
	store   Store
	users   *lock.KeyLock
	servers *lock.KeyLock
	stakes  *stakeBook
	taxes   *tax.Calculator
	cfg     LedgerConfig
	now     func() time.Time
}

// NewLedger creates a Ledger.
func NewLedger(store Store, taxes *tax.Calculator, cfg LedgerConfig) *Ledger {
	return &Ledger{
		store:   store,
		users:   lock.New(),
		servers: lock.New(),
		stakes:  newStakeBook(),
		taxes:   taxes,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Exclusive locks users (ascending) and then serverID, unless it is 0,
// and runs fn in one transaction.
func (l *Ledger) Exclusive(ctx context.Context, users []int64, serverID int64, fn func(Repos) error) error {
	unlock, err := l.users.LockAll(ctx, users...)
	if err != nil {
		return err
	}
	defer unlock()

	if serverID != 0 {
		if err := l.servers.Lock(ctx, serverID); err != nil {
			return err
		}
		defer l.servers.Unlock(serverID)
	}

	return l.store.WithTx(ctx, fn)
}

// GetBalance returns a user's balance. Missing accounts read as 0.
func (l *Ledger) GetBalance(ctx context.Context, userID, serverID int64) (int64, error) {
	return l.store.GetBalance(ctx, userID, serverID)
}

// Add credits amount to the user and returns the new balance.
func (l *Ledger) Add(ctx context.Context, userID, serverID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return l.apply(ctx, userID, serverID, amount)
}

// Subtract debits amount from the user and returns the new balance. The
// balance is clamped at zero and never drops below what running games
// have staked. Callers check affordability first.
func (l *Ledger) Subtract(ctx context.Context, userID, serverID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return l.apply(ctx, userID, serverID, -amount)
}

func (l *Ledger) apply(ctx context.Context, userID, serverID, delta int64) (int64, error) {
	var balance int64
	err := l.Exclusive(ctx, []int64{userID}, 0, func(r Repos) error {
		before, err := r.GetBalance(ctx, userID, serverID)
		if err != nil {
			return err
		}
		floor := l.stakes.get(stakeKey{userID: userID, serverID: serverID})
		balance, err = r.AddBalance(ctx, userID, serverID, protectStakes(before, delta, floor))
		return err
	})
	return balance, err
}

// CooldownCheck rejects a settlement while action is cooling down.
type CooldownCheck struct {
	Action string
	Window time.Duration
}

// Settlement is one atomic balance change, such as a game result.
type Settlement struct {
	UserID   int64
	ServerID int64

	// Delta is applied to the balance, which is clamped at zero. A debit
	// never reaches coins staked by games other than Stake's.
	Delta int64
	// RequireFunds, when positive, fails the settlement with
	// ErrInsufficientFunds if the balance not staked elsewhere is lower
	// before applying Delta.
	RequireFunds int64
	// Stake is the game's reservation. It is released when the settlement
	// commits.
	Stake *Stake
	// Checks are evaluated under the user lock before anything changes.
	Checks []CooldownCheck

	// Stamps lists cooldown actions to stamp with the settlement time.
	Stamps []string

	TxType      string
	Description string
}

// SettlementResult reports balances after a settlement.
type SettlementResult struct {
	Before  int64
	Balance int64
}

// Settle applies s atomically: either every part happens or none does.
func (l *Ledger) Settle(ctx context.Context, s Settlement) (*SettlementResult, error) {
	key := stakeKey{userID: s.UserID, serverID: s.ServerID}

	res := &SettlementResult{}
	err := l.Exclusive(ctx, []int64{s.UserID}, 0, func(r Repos) error {
		now := l.now()
		for _, c := range s.Checks {
			if err := checkCooldown(ctx, r, now, s.UserID, c.Action, c.Window); err != nil {
				return err
			}
		}

		before, err := r.GetBalance(ctx, s.UserID, s.ServerID)
		if err != nil {
			return err
		}
		floor := l.stakes.get(key) - s.Stake.owned(key)
		if s.RequireFunds > 0 && before-floor < s.RequireFunds {
			return ErrInsufficientFunds
		}
		res.Before = before
		res.Balance = before

		if delta := protectStakes(before, s.Delta, floor); delta != 0 {
			if res.Balance, err = r.AddBalance(ctx, s.UserID, s.ServerID, delta); err != nil {
				return err
			}
		}

		for _, action := range s.Stamps {
			if err := r.StampCooldown(ctx, s.UserID, action, now); err != nil {
				return err
			}
		}

		if s.TxType != "" {
			return record(ctx, r, s.UserID, s.ServerID, res.Balance-before, s.TxType, s.Description)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Stake.Release()

	log.Debug().
		Int64("user_id", s.UserID).
		Int64("server_id", s.ServerID).
		Int64("delta", res.Balance-res.Before).
		Int64("balance", res.Balance).
		Str("type", s.TxType).
		Msg("Settled")

	return res, nil
}

// SetBalance overwrites a balance (admin use) and records the adjustment.
func (l *Ledger) SetBalance(ctx context.Context, userID, serverID, balance int64) (*SettlementResult, error) {
	if balance < 0 {
		return nil, ErrInvalidAmount
	}

	res := &SettlementResult{}
	err := l.Exclusive(ctx, []int64{userID}, 0, func(r Repos) error {
		before, err := r.GetBalance(ctx, userID, serverID)
		if err != nil {
			return err
		}
		if staked := l.stakes.get(stakeKey{userID: userID, serverID: serverID}); balance < staked {
			return fmt.Errorf("%w: %d coins are in play", ErrFundsStaked, staked)
		}
		if res.Balance, err = r.SetBalance(ctx, userID, serverID, balance); err != nil {
			return err
		}
		res.Before = before
		return record(ctx, r, userID, serverID, res.Balance-before, model.TxTypeAdminSet, "admin set balance")
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TransferRequest moves Amount from From to To within ServerID.
type TransferRequest struct {
	From     int64
	To       int64
	ServerID int64
	Amount   int64
}

// TransferResult reports a completed transfer.
type TransferResult struct {
	Amount           int64
	Tax              int64
	Received         int64
	SenderBalance    int64
	RecipientBalance int64
	Jackpot          int64
}

// Transfer debits the sender, credits the recipient the amount less gift
// tax, and puts the tax into the server jackpot. Coins staked in a running
// game cannot be sent.
func (l *Ledger) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.From == req.To {
		return nil, ErrSelfTransfer
	}
	if req.Amount <= l.cfg.TransferMin || req.Amount >= l.cfg.TransferMax {
		return nil, fmt.Errorf("%w: must be above %d and below %d", ErrTransferRange, l.cfg.TransferMin, l.cfg.TransferMax)
	}

	received, giftTax := l.taxes.AfterTax(req.Amount, tax.Gift)
	res := &TransferResult{Amount: req.Amount, Tax: giftTax, Received: received}

	err := l.Exclusive(ctx, []int64{req.From, req.To}, req.ServerID, func(r Repos) error {
		balance, err := r.GetBalance(ctx, req.From, req.ServerID)
		if err != nil {
			return err
		}
		if req.Amount > balance {
			return ErrInsufficientFunds
		}
		if staked := l.stakes.get(stakeKey{userID: req.From, serverID: req.ServerID}); req.Amount > balance-staked {
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, ErrFundsStaked)
		}

		if res.SenderBalance, err = r.AddBalance(ctx, req.From, req.ServerID, -req.Amount); err != nil {
			return err
		}
		if res.RecipientBalance, err = r.AddBalance(ctx, req.To, req.ServerID, received); err != nil {
			return err
		}
		if res.Jackpot, err = r.AddJackpot(ctx, req.ServerID, giftTax, l.cfg.JackpotInitial); err != nil {
			return err
		}

		if err := record(ctx, r, req.From, req.ServerID, -req.Amount, model.TxTypeTransferOut,
			fmt.Sprintf("transfer to %d", req.To)); err != nil {
			return err
		}
		return record(ctx, r, req.To, req.ServerID, received, model.TxTypeTransferIn,
			fmt.Sprintf("transfer from %d (tax %d)", req.From, giftTax))
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("from", req.From).
		Int64("to", req.To).
		Int64("server_id", req.ServerID).
		Int64("amount", req.Amount).
		Int64("tax", giftTax).
		Msg("Transfer completed")

	return res, nil
}

func record(ctx context.Context, r Repos, userID, serverID, amount int64, txType, desc string) error {
	tx := &model.Transaction{UserID: userID, ServerID: serverID, Amount: amount, Type: txType}
	if desc != "" {
		tx.Description = &desc
	}
	return r.RecordTransaction(ctx, tx)
}
