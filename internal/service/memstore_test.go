package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_WithTxRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(r Repos) error {
		if _, err := r.AddBalance(ctx, 1, testServer, 500); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	balance, _ := store.GetBalance(ctx, 1, testServer)
	assert.Zero(t, balance)
}

func TestMemoryStore_WithTxRollsBackWhenContextEnds(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := store.WithTx(ctx, func(r Repos) error {
		if _, err := r.AddBalance(ctx, 1, testServer, 500); err != nil {
			return err
		}
		if err := r.StampCooldown(ctx, 1, "coin", time.Now()); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	balance, _ := store.GetBalance(context.Background(), 1, testServer)
	assert.Zero(t, balance)
	_, stamped, _ := store.GetCooldown(context.Background(), 1, "coin")
	assert.False(t, stamped)
}

func TestMemoryStore_WithTxCommits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(r Repos) error {
		_, err := r.AddBalance(ctx, 1, testServer, 500)
		return err
	}))
	balance, _ := store.GetBalance(ctx, 1, testServer)
	assert.Equal(t, int64(500), balance)
}
