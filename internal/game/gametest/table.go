// Package gametest provides a scripted game.Table for tests.
package gametest

import (
	"context"
	"fmt"
	"sync"

	"telegram-casino-bot/internal/game"
)

// Table answers prompts from a fixed script. Once the script runs out
// every Ask returns game.ErrTimeout.
type Table struct {
	mu      sync.Mutex
	answers []string
	Prompts []game.Prompt
	Shown   []string
}

// NewTable creates a Table that answers with answers in order.
func NewTable(answers ...string) *Table {
	return &Table{answers: answers}
}

// Ask returns the next scripted answer.
func (t *Table) Ask(ctx context.Context, p game.Prompt) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.Prompts = append(t.Prompts, p)
	if len(t.answers) == 0 {
		return "", game.ErrTimeout
	}
	answer := t.answers[0]
	t.answers = t.answers[1:]
	if !p.HasChoice(answer) {
		return "", fmt.Errorf("%w: %q", game.ErrInvalidChoice, answer)
	}
	return answer, nil
}

// Show records text.
func (t *Table) Show(_ context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Shown = append(t.Shown, text)
	return nil
}

// Asked returns how many prompts were presented.
func (t *Table) Asked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Prompts)
}
