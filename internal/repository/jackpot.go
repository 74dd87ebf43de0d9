package repository

import (
	"context"
	"fmt"

	"telegram-casino-bot/internal/model"
)

// JackpotRepository handles the jackpot table.
type JackpotRepository struct {
	db DBTX
}

// NewJackpotRepository creates a new JackpotRepository instance.
func NewJackpotRepository(db DBTX) *JackpotRepository {
	return &JackpotRepository{db: db}
}

// GetJackpot returns the pool of serverID, creating it at initial if missing.
func (r *JackpotRepository) GetJackpot(ctx context.Context, serverID, initial int64) (int64, error) {
	const query = `
		INSERT INTO jackpot (server_id, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (server_id) DO UPDATE SET server_id = EXCLUDED.server_id
		RETURNING amount
	`

	var amount int64
	if err := r.db.QueryRow(ctx, query, serverID, initial).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to get jackpot: %w", err)
	}
	return amount, nil
}

// AddJackpot adds delta to the pool, never letting it drop below floor,
// and returns the new amount. A missing pool starts at floor.
func (r *JackpotRepository) AddJackpot(ctx context.Context, serverID, delta, floor int64) (int64, error) {
	const query = `
		INSERT INTO jackpot (server_id, amount, updated_at)
		VALUES ($1, GREATEST($3::BIGINT + $2::BIGINT, $3::BIGINT), NOW())
		ON CONFLICT (server_id) DO UPDATE
		SET amount = GREATEST(jackpot.amount + $2::BIGINT, $3::BIGINT), updated_at = NOW()
		RETURNING amount
	`

	var amount int64
	if err := r.db.QueryRow(ctx, query, serverID, delta, floor).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to update jackpot: %w", err)
	}
	return amount, nil
}

// SetJackpot sets the pool of serverID to amount.
func (r *JackpotRepository) SetJackpot(ctx context.Context, serverID, amount int64) error {
	const query = `
		INSERT INTO jackpot (server_id, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (server_id) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, serverID, amount); err != nil {
		return fmt.Errorf("failed to set jackpot: %w", err)
	}
	return nil
}

// ListJackpots returns every known pool.
func (r *JackpotRepository) ListJackpots(ctx context.Context) ([]*model.Jackpot, error) {
	const query = `SELECT server_id, amount, updated_at FROM jackpot ORDER BY server_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jackpots: %w", err)
	}
	defer rows.Close()

	var pools []*model.Jackpot
	for rows.Next() {
		var j model.Jackpot
		if err := rows.Scan(&j.ServerID, &j.Amount, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan jackpot: %w", err)
		}
		pools = append(pools, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jackpots: %w", err)
	}
	return pools, nil
}
