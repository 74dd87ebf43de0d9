// Package model defines the data models for the casino bot.
package model

import "time"

// User stores the display name last seen for a Telegram user.
type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Account is a user's balance within one server (chat).
// Balance is never negative.
type Account struct {
	UserID    int64     `db:"user_id"`
	ServerID  int64     `db:"server_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Jackpot is the shared pool of one server.
type Jackpot struct {
	ServerID  int64     `db:"server_id"`
	Amount    int64     `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Cooldown records the last time a user performed a gated action.
type Cooldown struct {
	UserID   int64     `db:"user_id"`
	Action   string    `db:"action_type"`
	LastUsed time.Time `db:"last_used"`
}

// Transaction represents a balance change record.
type Transaction struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ServerID    int64     `db:"server_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// RankEntry is one row of the balance leaderboard.
type RankEntry struct {
	UserID   int64  `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Balance  int64  `db:"balance" json:"balance"`
}

// DailyRank represents a user's daily game performance for ranking.
type DailyRank struct {
	UserID    int64  `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	NetProfit int64  `db:"net_profit" json:"net_profit"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeCoin        = "coin"
	TxTypeDice        = "dice"
	TxTypeBlackjack   = "blackjack"
	TxTypeBaccarat    = "baccarat"
	TxTypeIndianPoker = "indian_poker"
	TxTypeJackpotBet  = "jackpot_bet"
	TxTypeJackpotWin  = "jackpot_win"
	TxTypeTransferOut = "transfer_out"
	TxTypeTransferIn  = "transfer_in"
	TxTypeWork        = "work"
	TxTypeAdminAdd    = "admin_add"
	TxTypeAdminSub    = "admin_sub"
	TxTypeAdminSet    = "admin_set"
)

// Cooldown action keys that are not a game type.
const (
	ActionWork       = "work"
	ActionJackpotWin = "jackpot_win"
)

// GameTransactionTypes returns the transaction types that count towards daily game rankings.
// Transfers, work income and admin adjustments are excluded.
func GameTransactionTypes() []string {
	return []string{
		TxTypeCoin, TxTypeDice, TxTypeBlackjack, TxTypeBaccarat,
		TxTypeIndianPoker, TxTypeJackpotBet, TxTypeJackpotWin,
	}
}
