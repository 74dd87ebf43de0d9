package service

import (
	"context"
	"fmt"
	"sync"
)

type stakeKey struct {
	userID   int64
	serverID int64
}

// stakeBook tracks bets reserved by running games, per account.
type stakeBook struct {
	mu   sync.Mutex
	held map[stakeKey]int64
}

func newStakeBook() *stakeBook {
	return &stakeBook{held: make(map[stakeKey]int64)}
}

func (b *stakeBook) get(k stakeKey) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.held[k]
}

func (b *stakeBook) add(k stakeKey, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.held[k] += amount
}

func (b *stakeBook) remove(k stakeKey, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.held[k] -= amount
	if b.held[k] <= 0 {
		delete(b.held, k)
	}
}

// Stake is part of a balance reserved for a running game. Staked coins
// cannot be transferred away, and no debit other than the settlement
// carrying the stake can reach them.
type Stake struct {
	ledger *Ledger
	key    stakeKey
	Amount int64
	once   sync.Once
}

// Release frees the reservation. It is safe to call more than once and
// on a nil Stake.
func (s *Stake) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.ledger.stakes.remove(s.key, s.Amount) })
}

// owned returns the stake amount if it belongs to k.
func (s *Stake) owned(k stakeKey) int64 {
	if s == nil || s.key != k {
		return 0
	}
	return s.Amount
}

// Reserve stakes amount of the user's unstaked balance until the returned
// Stake is released or consumed by Settle.
func (l *Ledger) Reserve(ctx context.Context, userID, serverID, amount int64) (*Stake, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := l.users.Lock(ctx, userID); err != nil {
		return nil, err
	}
	defer l.users.Unlock(userID)

	balance, err := l.store.GetBalance(ctx, userID, serverID)
	if err != nil {
		return nil, err
	}
	k := stakeKey{userID: userID, serverID: serverID}
	if staked := l.stakes.get(k); balance-staked < amount {
		if staked > 0 && balance >= amount {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, ErrFundsStaked)
		}
		return nil, ErrInsufficientFunds
	}
	l.stakes.add(k, amount)
	return &Stake{ledger: l, key: k, Amount: amount}, nil
}

// Staked returns how much of the user's balance running games hold.
func (l *Ledger) Staked(userID, serverID int64) int64 {
	return l.stakes.get(stakeKey{userID: userID, serverID: serverID})
}

// protectStakes shrinks a debit so the balance stays at or above floor.
// Credits pass through unchanged.
func protectStakes(before, delta, floor int64) int64 {
	if delta >= 0 || before+delta >= floor {
		return delta
	}
	return min(0, floor-before)
}
