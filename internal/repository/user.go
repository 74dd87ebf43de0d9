package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"telegram-casino-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository stores display names for rankings.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertUser records the latest username seen for a user.
func (r *UserRepository) UpsertUser(ctx context.Context, userID int64, username string) error {
	const query = `
		INSERT INTO users (user_id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = NOW()
		WHERE users.username <> EXCLUDED.username
	`

	if _, err := r.db.Exec(ctx, query, userID, username); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	const query = `
		SELECT user_id, username, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user model.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// FindUserByName looks a user up by username, ignoring case and a leading @.
func (r *UserRepository) FindUserByName(ctx context.Context, username string) (*model.User, error) {
	const query = `
		SELECT user_id, username, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER(LTRIM($1, '@'))
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var user model.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&user.UserID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}
