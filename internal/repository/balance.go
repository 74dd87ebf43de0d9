package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"telegram-casino-bot/internal/model"
)

// BalanceRepository handles the user_balance table.
type BalanceRepository struct {
	db DBTX
}

// NewBalanceRepository creates a new BalanceRepository instance.
func NewBalanceRepository(db DBTX) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// GetBalance returns the balance of (userID, serverID). A missing row reads as 0.
func (r *BalanceRepository) GetBalance(ctx context.Context, userID, serverID int64) (int64, error) {
	const query = `
		SELECT balance FROM user_balance
		WHERE user_id = $1 AND server_id = $2
	`

	var balance int64
	err := r.db.QueryRow(ctx, query, userID, serverID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// AddBalance adds delta (which may be negative) to the balance, clamping
// the result at zero, and returns the new balance. The row is created on
// first use.
func (r *BalanceRepository) AddBalance(ctx context.Context, userID, serverID, delta int64) (int64, error) {
	const query = `
		INSERT INTO user_balance (user_id, server_id, balance, updated_at)
		VALUES ($1, $2, GREATEST($3::BIGINT, 0), NOW())
		ON CONFLICT (user_id, server_id) DO UPDATE
		SET balance = GREATEST(user_balance.balance + $3::BIGINT, 0), updated_at = NOW()
		RETURNING balance
	`

	var balance int64
	if err := r.db.QueryRow(ctx, query, userID, serverID, delta).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	return balance, nil
}

// SetBalance sets the balance to an exact non-negative value.
func (r *BalanceRepository) SetBalance(ctx context.Context, userID, serverID, balance int64) (int64, error) {
	const query = `
		INSERT INTO user_balance (user_id, server_id, balance, updated_at)
		VALUES ($1, $2, GREATEST($3::BIGINT, 0), NOW())
		ON CONFLICT (user_id, server_id) DO UPDATE
		SET balance = EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var out int64
	if err := r.db.QueryRow(ctx, query, userID, serverID, balance).Scan(&out); err != nil {
		return 0, fmt.Errorf("failed to set balance: %w", err)
	}
	return out, nil
}

// TopBalances returns the richest accounts of a server.
func (r *BalanceRepository) TopBalances(ctx context.Context, serverID int64, limit int) ([]*model.RankEntry, error) {
	const query = `
		SELECT b.user_id, COALESCE(u.username, ''), b.balance
		FROM user_balance b
		LEFT JOIN users u ON u.user_id = b.user_id
		WHERE b.server_id = $1 AND b.balance > 0
		ORDER BY b.balance DESC, b.user_id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var entries []*model.RankEntry
	for rows.Next() {
		var e model.RankEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan rank entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank entries: %w", err)
	}
	return entries, nil
}
