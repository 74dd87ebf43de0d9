package casino

import "errors"

// Session errors. Service errors such as service.ErrInsufficientFunds and
// *service.CooldownError are passed through unchanged.
var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrInvalidBet      = errors.New("invalid bet amount")
	ErrBetTooLow       = errors.New("bet below minimum")
	ErrBetTooHigh      = errors.New("bet at or above maximum")
	ErrGameInProgress  = errors.New("a game is already in progress")
	ErrTimeoutExpired  = errors.New("no choice made in time")
	ErrJackpotCooldown = errors.New("jackpot win cooldown active")
)
