// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/db"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a migrated pool.
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// ============================================================================
// Balance
// ============================================================================

func TestBalanceRepository_MissingReadsZero(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBalanceRepository(pool)
	balance, err := repo.GetBalance(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestBalanceRepository_AddClampsAtZero(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBalanceRepository(pool)
	ctx := context.Background()

	balance, err := repo.AddBalance(ctx, 1, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	balance, err = repo.AddBalance(ctx, 1, 100, -200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	balance, err = repo.AddBalance(ctx, 1, 100, -1_000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	// Accounts are per server.
	other, err := repo.GetBalance(ctx, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)

	// A first-touch debit creates a zero row.
	balance, err = repo.AddBalance(ctx, 2, 100, -50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestBalanceRepository_SetAndTop(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	q := NewQueries(pool)
	ctx := context.Background()

	require.NoError(t, q.UpsertUser(ctx, 1, "alice"))
	require.NoError(t, q.UpsertUser(ctx, 3, "carol"))

	_, err := q.SetBalance(ctx, 1, 100, 3000)
	require.NoError(t, err)
	_, err = q.SetBalance(ctx, 2, 100, 1000)
	require.NoError(t, err)
	_, err = q.SetBalance(ctx, 3, 100, 5000)
	require.NoError(t, err)
	_, err = q.SetBalance(ctx, 4, 999, 9000)
	require.NoError(t, err)

	top, err := q.TopBalances(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, int64(3), top[0].UserID)
	assert.Equal(t, "carol", top[0].Username)
	assert.Equal(t, int64(1), top[1].UserID)
	assert.Equal(t, int64(2), top[2].UserID)
	assert.Equal(t, "", top[2].Username)
}

// ============================================================================
// Jackpot
// ============================================================================

func TestJackpotRepository_FloorAndReset(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewJackpotRepository(pool)
	ctx := context.Background()

	amount, err := repo.GetJackpot(ctx, 100, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), amount)

	amount, err = repo.AddJackpot(ctx, 100, 5_000, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_005_000), amount)

	// GetJackpot does not overwrite an existing pool.
	amount, err = repo.GetJackpot(ctx, 100, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_005_000), amount)

	amount, err = repo.AddJackpot(ctx, 100, -10_000_000, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), amount)

	require.NoError(t, repo.SetJackpot(ctx, 200, 42))
	pools, err := repo.ListJackpots(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, int64(42), pools[1].Amount)
}

// ============================================================================
// Cooldown
// ============================================================================

func TestCooldownRepository_Stamp(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCooldownRepository(pool)
	ctx := context.Background()

	_, ok, err := repo.GetCooldown(ctx, 1, model.ActionWork)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Now().Add(-time.Minute).UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.StampCooldown(ctx, 1, model.ActionWork, first))
	got, ok, err := repo.GetCooldown(ctx, 1, model.ActionWork)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(first))

	second := first.Add(30 * time.Second)
	require.NoError(t, repo.StampCooldown(ctx, 1, model.ActionWork, second))
	got, _, err = repo.GetCooldown(ctx, 1, model.ActionWork)
	require.NoError(t, err)
	assert.True(t, got.Equal(second))
}

// ============================================================================
// Transactions
// ============================================================================

func TestTransactionRepository_RecordAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTransactionRepository(pool)
	ctx := context.Background()

	desc := "coin win"
	tx := &model.Transaction{UserID: 1, ServerID: 100, Amount: 700, Type: model.TxTypeCoin, Description: &desc}
	require.NoError(t, repo.RecordTransaction(ctx, tx))
	assert.NotZero(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	require.NoError(t, repo.RecordTransaction(ctx, &model.Transaction{UserID: 1, ServerID: 100, Amount: -100, Type: model.TxTypeDice}))
	require.NoError(t, repo.RecordTransaction(ctx, &model.Transaction{UserID: 1, ServerID: 200, Amount: 5, Type: model.TxTypeDice}))

	txs, err := repo.ListTransactions(ctx, 1, 100, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-100), txs[0].Amount)
	require.NotNil(t, txs[1].Description)
	assert.Equal(t, "coin win", *txs[1].Description)
}

func TestTransactionRepository_DailyRanks(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	q := NewQueries(pool)
	ctx := context.Background()
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)

	require.NoError(t, q.UpsertUser(ctx, 1, "winner"))
	records := []*model.Transaction{
		{UserID: 1, ServerID: 100, Amount: 900, Type: model.TxTypeBlackjack, CreatedAt: now},
		{UserID: 1, ServerID: 100, Amount: -100, Type: model.TxTypeCoin, CreatedAt: now},
		{UserID: 2, ServerID: 100, Amount: -500, Type: model.TxTypeDice, CreatedAt: now},
		{UserID: 3, ServerID: 100, Amount: 10_000, Type: model.TxTypeTransferIn, CreatedAt: now},
		{UserID: 4, ServerID: 100, Amount: 10_000, Type: model.TxTypeCoin, CreatedAt: yesterday},
		{UserID: 5, ServerID: 200, Amount: 10_000, Type: model.TxTypeCoin, CreatedAt: now},
	}
	for _, r := range records {
		require.NoError(t, q.RecordTransaction(ctx, r))
	}

	winners, err := q.DailyWinners(ctx, 100, now, 10)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, int64(1), winners[0].UserID)
	assert.Equal(t, "winner", winners[0].Username)
	assert.Equal(t, int64(800), winners[0].NetProfit)

	losers, err := q.DailyLosers(ctx, 100, now, 10)
	require.NoError(t, err)
	require.Len(t, losers, 1)
	assert.Equal(t, int64(2), losers[0].UserID)
	assert.Equal(t, int64(-500), losers[0].NetProfit)
}

// ============================================================================
// Store
// ============================================================================

func TestStore_WithTxRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(q *Queries) error {
		if _, err := q.AddBalance(ctx, 1, 100, 1_000); err != nil {
			return err
		}
		if _, err := q.AddJackpot(ctx, 100, 50, 0); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	balance, err := store.GetBalance(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	pools, err := store.ListJackpots(ctx)
	require.NoError(t, err)
	assert.Empty(t, pools)

	err = store.WithTx(ctx, func(q *Queries) error {
		_, err := q.AddBalance(ctx, 1, 100, 1_000)
		return err
	})
	require.NoError(t, err)
	balance, err = store.GetBalance(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), balance)
}

func TestUserRepository_FindByName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.UpsertUser(ctx, 7, "Alice"))
	user, err := repo.FindUserByName(ctx, "@alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.UserID)

	require.NoError(t, repo.UpsertUser(ctx, 7, "alice2"))
	got, err := repo.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)

	_, err = repo.FindUserByName(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
