package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"telegram-casino-bot/internal/model"
)

func TestStake_ReserveRespectsUnstakedBalance(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	_, _ = store.SetBalance(ctx, 1, testServer, 10_000)

	stake, err := ledger.Reserve(ctx, 1, testServer, 6_000)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), ledger.Staked(1, testServer))

	_, err = ledger.Reserve(ctx, 1, testServer, 5_000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.ErrorIs(t, err, ErrFundsStaked)

	_, err = ledger.Reserve(ctx, 1, testServer, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	stake.Release()
	stake.Release()
	assert.Zero(t, ledger.Staked(1, testServer))

	var none *Stake
	assert.NotPanics(t, none.Release)
}

func TestStake_TransferCannotMoveStakedCoins(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	_, _ = store.SetBalance(ctx, 1, testServer, 10_000)

	stake, err := ledger.Reserve(ctx, 1, testServer, 10_000)
	require.NoError(t, err)

	_, err = ledger.Transfer(ctx, TransferRequest{From: 1, To: 2, ServerID: testServer, Amount: 9_000})
	require.ErrorIs(t, err, ErrFundsStaked)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, _ := store.GetBalance(ctx, 1, testServer)
	assert.Equal(t, int64(10_000), balance)
	received, _ := store.GetBalance(ctx, 2, testServer)
	assert.Zero(t, received)
	assert.Empty(t, store.Transactions())

	stake.Release()
	_, err = ledger.Transfer(ctx, TransferRequest{From: 1, To: 2, ServerID: testServer, Amount: 9_000})
	assert.NoError(t, err)
}

func TestStake_SettleConsumesStake(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	_, _ = store.SetBalance(ctx, 1, testServer, 10_000)

	stake, err := ledger.Reserve(ctx, 1, testServer, 10_000)
	require.NoError(t, err)

	res, err := ledger.Settle(ctx, Settlement{
		UserID: 1, ServerID: testServer, Delta: -10_000, RequireFunds: 10_000, Stake: stake, TxType: model.TxTypeBlackjack,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Balance)
	assert.Zero(t, ledger.Staked(1, testServer))
}

func TestStake_OtherDebitsStopAtStakedFloor(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	_, _ = store.SetBalance(ctx, 1, testServer, 10_000)

	stake, err := ledger.Reserve(ctx, 1, testServer, 8_000)
	require.NoError(t, err)
	defer stake.Release()

	balance, err := ledger.Subtract(ctx, 1, testServer, 5_000)
	require.NoError(t, err)
	assert.Equal(t, int64(8_000), balance)

	res, err := ledger.Settle(ctx, Settlement{UserID: 1, ServerID: testServer, Delta: -5_000, TxType: model.TxTypeAdminSub})
	require.NoError(t, err)
	assert.Equal(t, int64(8_000), res.Balance)

	_, err = ledger.Settle(ctx, Settlement{UserID: 1, ServerID: testServer, Delta: -1, RequireFunds: 1})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = ledger.SetBalance(ctx, 1, testServer, 7_999)
	assert.ErrorIs(t, err, ErrFundsStaked)

	// Credits are never limited.
	balance, err = ledger.Add(ctx, 1, testServer, 1_000)
	require.NoError(t, err)
	assert.Equal(t, int64(9_000), balance)
}

// TestStake_ProtectStakesProperty checks that a debit never takes the
// balance below the floor it started above, and credits pass unchanged.
func TestStake_ProtectStakesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		before := rapid.Int64Range(0, 1_000_000).Draw(t, "before")
		floor := rapid.Int64Range(0, before).Draw(t, "floor")
		delta := rapid.Int64Range(-2_000_000, 2_000_000).Draw(t, "delta")

		got := protectStakes(before, delta, floor)
		if delta >= 0 {
			if got != delta {
				t.Fatalf("credit %d changed to %d", delta, got)
			}
			return
		}
		if got > 0 || got < delta {
			t.Fatalf("debit %d became %d", delta, got)
		}
		if before+got < floor {
			t.Fatalf("balance %d fell below floor %d", before+got, floor)
		}
	})
}
