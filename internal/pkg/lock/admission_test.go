package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAdmissionStartEnd(t *testing.T) {
	a := NewAdmission()

	assert.True(t, a.Start(1, "blackjack"))
	assert.False(t, a.Start(1, "coin"))

	game, ok := a.Active(1)
	assert.True(t, ok)
	assert.Equal(t, "blackjack", game)

	assert.True(t, a.Start(2, "coin"))
	assert.Equal(t, 2, a.Count())

	a.End(1)
	_, ok = a.Active(1)
	assert.False(t, ok)
	assert.True(t, a.Start(1, "coin"))

	a.End(3)
	assert.Equal(t, 2, a.Count())
}

// TestAdmissionSingleWinnerProperty checks that concurrent Start calls for the
// same user admit exactly one game.
func TestAdmissionSingleWinnerProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")
		attempts := rapid.IntRange(2, 30).Draw(t, "attempts")

		a := NewAdmission()
		var admitted atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(attempts)
		for i := 0; i < attempts; i++ {
			go func() {
				defer wg.Done()
				<-start
				if a.Start(userID, "dice") {
					admitted.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if admitted.Load() != 1 {
			t.Fatalf("expected exactly one admission, got %d", admitted.Load())
		}
		a.End(userID)
		if a.Count() != 0 {
			t.Fatalf("slot not released")
		}
	})
}
