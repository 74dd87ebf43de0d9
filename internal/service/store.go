// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"time"

	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/repository"
)

// Repos is the row-level access the ledger needs, inside or outside a
// transaction.
type Repos interface {
	GetBalance(ctx context.Context, userID, serverID int64) (int64, error)
	AddBalance(ctx context.Context, userID, serverID, delta int64) (int64, error)
	SetBalance(ctx context.Context, userID, serverID, balance int64) (int64, error)

	GetJackpot(ctx context.Context, serverID, initial int64) (int64, error)
	AddJackpot(ctx context.Context, serverID, delta, floor int64) (int64, error)
	SetJackpot(ctx context.Context, serverID, amount int64) error

	GetCooldown(ctx context.Context, userID int64, action string) (time.Time, bool, error)
	StampCooldown(ctx context.Context, userID int64, action string, at time.Time) error

	RecordTransaction(ctx context.Context, tx *model.Transaction) error
}

// Store is the persistence boundary of the service layer.
type Store interface {
	Repos

	// WithTx runs fn in one transaction; any error rolls everything back.
	WithTx(ctx context.Context, fn func(Repos) error) error

	ListJackpots(ctx context.Context) ([]*model.Jackpot, error)
	TopBalances(ctx context.Context, serverID int64, limit int) ([]*model.RankEntry, error)
	DailyWinners(ctx context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error)
	DailyLosers(ctx context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error)

	UpsertUser(ctx context.Context, userID int64, username string) error
	FindUserByName(ctx context.Context, username string) (*model.User, error)
}

type postgresStore struct {
	*repository.Store
}

// NewPostgresStore adapts a repository.Store to Store.
func NewPostgresStore(s *repository.Store) Store {
	return postgresStore{Store: s}
}

func (s postgresStore) WithTx(ctx context.Context, fn func(Repos) error) error {
	return s.Store.WithTx(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}

func (s postgresStore) FindUserByName(ctx context.Context, username string) (*model.User, error) {
	user, err := s.Store.FindUserByName(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
