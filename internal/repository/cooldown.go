package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository handles the cooldowns table.
type CooldownRepository struct {
	db DBTX
}

// NewCooldownRepository creates a new CooldownRepository instance.
func NewCooldownRepository(db DBTX) *CooldownRepository {
	return &CooldownRepository{db: db}
}

// GetCooldown returns when the user last performed action. ok is false if never.
func (r *CooldownRepository) GetCooldown(ctx context.Context, userID int64, action string) (time.Time, bool, error) {
	const query = `
		SELECT last_used FROM cooldowns
		WHERE user_id = $1 AND action_type = $2
	`

	var last time.Time
	err := r.db.QueryRow(ctx, query, userID, action).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get cooldown: %w", err)
	}
	return last, true, nil
}

// StampCooldown upserts the last-used time of action.
func (r *CooldownRepository) StampCooldown(ctx context.Context, userID int64, action string, at time.Time) error {
	const query = `
		INSERT INTO cooldowns (user_id, action_type, last_used)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, action_type) DO UPDATE
		SET last_used = EXCLUDED.last_used
	`

	if _, err := r.db.Exec(ctx, query, userID, action, at); err != nil {
		return fmt.Errorf("failed to stamp cooldown: %w", err)
	}
	return nil
}
