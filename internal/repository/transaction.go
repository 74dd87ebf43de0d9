package repository

import (
	"context"
	"fmt"
	"time"

	"telegram-casino-bot/internal/model"
)

// TransactionRepository handles transaction data persistence.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// RecordTransaction inserts tx and fills in its ID and CreatedAt.
// A zero CreatedAt means now.
func (r *TransactionRepository) RecordTransaction(ctx context.Context, tx *model.Transaction) error {
	const query = `
		INSERT INTO transactions (user_id, server_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, created_at
	`

	var createdAt *time.Time
	if !tx.CreatedAt.IsZero() {
		createdAt = &tx.CreatedAt
	}

	err := r.db.QueryRow(ctx, query,
		tx.UserID, tx.ServerID, tx.Amount, tx.Type, tx.Description, createdAt,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a user's transactions in a server, newest first.
func (r *TransactionRepository) ListTransactions(ctx context.Context, userID, serverID int64, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, user_id, server_id, amount, type, description, created_at
		FROM transactions
		WHERE user_id = $1 AND server_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, userID, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.ServerID,
			&tx.Amount,
			&tx.Type,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// DailyWinners returns users with positive game profit on date, most profit first.
func (r *TransactionRepository) DailyWinners(ctx context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error) {
	const query = `
		SELECT t.user_id, COALESCE(u.username, ''), SUM(t.amount) AS net_profit
		FROM transactions t
		LEFT JOIN users u ON u.user_id = t.user_id
		WHERE t.server_id = $1
		  AND t.type = ANY($2)
		  AND t.created_at >= $3
		  AND t.created_at < $4
		GROUP BY t.user_id, u.username
		HAVING SUM(t.amount) > 0
		ORDER BY net_profit DESC
		LIMIT $5
	`
	return r.dailyRanks(ctx, query, serverID, date, limit)
}

// DailyLosers returns users with negative game profit on date, most loss first.
func (r *TransactionRepository) DailyLosers(ctx context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error) {
	const query = `
		SELECT t.user_id, COALESCE(u.username, ''), SUM(t.amount) AS net_profit
		FROM transactions t
		LEFT JOIN users u ON u.user_id = t.user_id
		WHERE t.server_id = $1
		  AND t.type = ANY($2)
		  AND t.created_at >= $3
		  AND t.created_at < $4
		GROUP BY t.user_id, u.username
		HAVING SUM(t.amount) < 0
		ORDER BY net_profit ASC
		LIMIT $5
	`
	return r.dailyRanks(ctx, query, serverID, date, limit)
}

func (r *TransactionRepository) dailyRanks(ctx context.Context, query string, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error) {
	start, end := dayBounds(date)

	rows, err := r.db.Query(ctx, query, serverID, model.GameTransactionTypes(), start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily ranks: %w", err)
	}
	defer rows.Close()

	var ranks []*model.DailyRank
	for rows.Next() {
		var rank model.DailyRank
		if err := rows.Scan(&rank.UserID, &rank.Username, &rank.NetProfit); err != nil {
			return nil, fmt.Errorf("failed to scan daily rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily ranks: %w", err)
	}
	return ranks, nil
}
