package service

import (
	"context"
	"time"
)

// CooldownGate rate-limits actions per (user, action).
type CooldownGate struct {
	store Store
	now   func() time.Time
}

// NewCooldownGate creates a CooldownGate.
func NewCooldownGate(store Store) *CooldownGate {
	return &CooldownGate{store: store, now: time.Now}
}

// Check returns the whole seconds, rounded up, left before action is
// allowed again, or 0 if it is allowed now.
func (g *CooldownGate) Check(ctx context.Context, userID int64, action string, window time.Duration) (int64, error) {
	last, ok, err := g.store.GetCooldown(ctx, userID, action)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return remainingSeconds(g.now(), last, window), nil
}

// Require returns a *CooldownError while action is cooling down.
func (g *CooldownGate) Require(ctx context.Context, userID int64, action string, window time.Duration) error {
	remaining, err := g.Check(ctx, userID, action, window)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &CooldownError{Action: action, Remaining: remaining}
	}
	return nil
}

// Stamp records now as the last use of action.
func (g *CooldownGate) Stamp(ctx context.Context, userID int64, action string) error {
	return g.store.StampCooldown(ctx, userID, action, g.now())
}

func checkCooldown(ctx context.Context, r Repos, now time.Time, userID int64, action string, window time.Duration) error {
	if window <= 0 {
		return nil
	}
	last, ok, err := r.GetCooldown(ctx, userID, action)
	if err != nil || !ok {
		return err
	}
	if remaining := remainingSeconds(now, last, window); remaining > 0 {
		return &CooldownError{Action: action, Remaining: remaining}
	}
	return nil
}

func remainingSeconds(now, last time.Time, window time.Duration) int64 {
	left := last.Add(window).Sub(now)
	if left <= 0 {
		return 0
	}
	secs := int64(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}
	return secs
}
