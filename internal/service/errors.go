package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount: must be positive")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrTransferRange     = errors.New("transfer amount out of range")
	ErrCooldown          = errors.New("action is cooling down")
	ErrUserNotFound      = errors.New("user not found")
	ErrFundsStaked       = errors.New("funds are staked in a running game")
)

// CooldownError reports how long a user must wait before action is allowed.
type CooldownError struct {
	Action    string
	Remaining int64 // whole seconds, rounded up
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s, %ds remaining", ErrCooldown, e.Action, e.Remaining)
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}
