package game

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry manages game registration and lookup by command.
type Registry struct {
	games map[string]Game
	mu    sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]Game),
	}
}

// Register adds a game to the registry.
// If a game with the same command already exists, it will be replaced.
func (r *Registry) Register(g Game) error {
	if g == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if g.Command() == "" {
		return fmt.Errorf("game command cannot be empty")
	}
	if !g.Type().Valid() {
		return fmt.Errorf("unknown game type %q", g.Type())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.Command()] = g
	return nil
}

// Get retrieves a game by its command.
func (r *Registry) Get(command string) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[command]
	return g, ok
}

// ByType retrieves a game by its type.
func (r *Registry) ByType(t Type) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(lo.Values(r.games), func(g Game) bool { return g.Type() == t })
}

// List returns all registered games sorted by command.
func (r *Registry) List() []Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := lo.Values(r.games)
	slices.SortFunc(games, func(a, b Game) int {
		switch {
		case a.Command() < b.Command():
			return -1
		case a.Command() > b.Command():
			return 1
		}
		return 0
	})
	return games
}

// Commands returns all registered game commands, sorted.
func (r *Registry) Commands() []string {
	return lo.Map(r.List(), func(g Game, _ int) string { return g.Command() })
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
