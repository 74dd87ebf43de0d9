package lock

import "sync"

// Admission tracks which users are currently inside an interactive game.
// A single mutex guards the whole map so check-then-insert is atomic.
type Admission struct {
	mu    sync.Mutex
	slots map[int64]string
}

// NewAdmission creates an empty admission registry.
func NewAdmission() *Admission {
	return &Admission{slots: make(map[int64]string)}
}

// Start claims the slot for userID. It returns false if the user is
// already playing something.
func (a *Admission) Start(userID int64, game string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.slots[userID]; busy {
		return false
	}
	a.slots[userID] = game
	return true
}

// End releases the user's slot. Releasing a free slot is a no-op.
func (a *Admission) End(userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.slots, userID)
}

// Active returns the game the user is currently playing.
func (a *Admission) Active(userID int64) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	game, ok := a.slots[userID]
	return game, ok
}

// Count returns the number of occupied slots.
func (a *Admission) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}
