// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository runs unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries groups the table repositories bound to one DBTX.
type Queries struct {
	*UserRepository
	*BalanceRepository
	*JackpotRepository
	*CooldownRepository
	*TransactionRepository
}

// NewQueries binds every repository to db.
func NewQueries(db DBTX) *Queries {
	return &Queries{
		UserRepository:        NewUserRepository(db),
		BalanceRepository:     NewBalanceRepository(db),
		JackpotRepository:     NewJackpotRepository(db),
		CooldownRepository:    NewCooldownRepository(db),
		TransactionRepository: NewTransactionRepository(db),
	}
}

// Store runs queries against the pool and opens transactions.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore creates a Store on top of pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: NewQueries(pool), pool: pool}
}

// WithTx runs fn inside one database transaction. The transaction commits
// if fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewQueries(tx))
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
