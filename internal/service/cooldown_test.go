package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownGate_CheckAfterStamp(t *testing.T) {
	store := NewMemoryStore()
	gate := NewCooldownGate(store)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return now }

	remaining, err := gate.Check(ctx, 1, "work", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)

	require.NoError(t, gate.Stamp(ctx, 1, "work"))

	remaining, err = gate.Check(ctx, 1, "work", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(60), remaining)

	now = now.Add(20*time.Second + 300*time.Millisecond)
	remaining, err = gate.Check(ctx, 1, "work", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(40), remaining, "partial seconds round up")

	err = gate.Require(ctx, 1, "work", 60*time.Second)
	var cdErr *CooldownError
	require.ErrorAs(t, err, &cdErr)
	assert.Equal(t, "work", cdErr.Action)

	now = now.Add(40 * time.Second)
	remaining, err = gate.Check(ctx, 1, "work", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
	assert.NoError(t, gate.Require(ctx, 1, "work", 60*time.Second))

	// Actions and users are independent.
	remaining, err = gate.Check(ctx, 2, "work", 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}

func TestRemainingSeconds(t *testing.T) {
	base := time.Unix(1_000, 0)
	assert.Equal(t, int64(0), remainingSeconds(base, base, 0))
	assert.Equal(t, int64(1), remainingSeconds(base.Add(59*time.Second+time.Millisecond), base, time.Minute))
	assert.Equal(t, int64(0), remainingSeconds(base.Add(time.Minute), base, time.Minute))
	assert.Equal(t, int64(60), remainingSeconds(base, base, time.Minute))
}
