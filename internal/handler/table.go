package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/game"
)

// Choice delivery errors.
var (
	ErrSessionClosed = errors.New("game session is closed")
	ErrNotOwner      = errors.New("not your game")
)

// Messenger is the part of *tele.Bot that tables need.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type waiter struct {
	owner  int64
	prompt game.Prompt
	answer chan string
}

// Sessions routes button presses to the tables waiting for them.
type Sessions struct {
	mu      sync.Mutex
	waiting map[string]*waiter
	timeout time.Duration
}

// NewSessions creates a router whose tables wait up to timeout per choice.
func NewSessions(timeout time.Duration) *Sessions {
	return &Sessions{waiting: make(map[string]*waiter), timeout: timeout}
}

// Deliver hands a pressed choice to the session's pending Ask.
func (s *Sessions) Deliver(sessionID string, userID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.waiting[sessionID]
	if !ok {
		return ErrSessionClosed
	}
	if w.owner != userID {
		return ErrNotOwner
	}
	if !w.prompt.HasChoice(key) {
		return game.ErrInvalidChoice
	}
	select {
	case w.answer <- key:
		delete(s.waiting, sessionID)
		return nil
	default:
		return ErrSessionClosed
	}
}

// Pending returns the number of tables waiting for a choice.
func (s *Sessions) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiting)
}

func (s *Sessions) wait(sessionID string, w *waiter) {
	s.mu.Lock()
	s.waiting[sessionID] = w
	s.mu.Unlock()
}

func (s *Sessions) forget(sessionID string) {
	s.mu.Lock()
	delete(s.waiting, sessionID)
	s.mu.Unlock()
}

// ChatTable is a game.Table rendered as one editable chat message with
// an inline keyboard.
type ChatTable struct {
	id       string
	owner    int64
	chat     *tele.Chat
	bot      Messenger
	sessions *Sessions
	cleaner  *MessageCleaner

	mu    sync.Mutex
	board *tele.Message
}

// NewTable creates the table for one session owned by owner.
func (s *Sessions) NewTable(bot Messenger, chat *tele.Chat, owner int64, sessionID string, cleaner *MessageCleaner) *ChatTable {
	return &ChatTable{
		id:       sessionID,
		owner:    owner,
		chat:     chat,
		bot:      bot,
		sessions: s,
		cleaner:  cleaner,
	}
}

// Ask shows p with buttons and waits for the owner to press one.
func (t *ChatTable) Ask(ctx context.Context, p game.Prompt) (string, error) {
	w := &waiter{owner: t.owner, prompt: p, answer: make(chan string, 1)}
	t.sessions.wait(t.id, w)
	defer t.sessions.forget(t.id)

	if err := t.render(p.Text, BuildChoicePanel(t.id, p.Choices)); err != nil {
		return "", err
	}

	timer := time.NewTimer(t.sessions.timeout)
	defer timer.Stop()

	select {
	case key := <-w.answer:
		return key, nil
	case <-timer.C:
		return "", game.ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Show replaces the board text and removes any buttons.
func (t *ChatTable) Show(_ context.Context, text string) error {
	return t.render(text, nil)
}

// Finish renders the final result on the board.
func (t *ChatTable) Finish(text string) error {
	return t.render(text, nil)
}

// render sends or edits the board. Editing without markup drops the
// inline keyboard.
func (t *ChatTable) render(text string, markup *tele.ReplyMarkup) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var opts []interface{}
	if markup != nil {
		opts = append(opts, markup)
	}

	if t.board == nil {
		msg, err := t.bot.Send(t.chat, text, opts...)
		if err != nil {
			return err
		}
		t.board = msg
		if t.cleaner != nil {
			t.cleaner.Track(msg)
		}
		return nil
	}

	msg, err := t.bot.Edit(t.board, text, opts...)
	if err != nil {
		// Unchanged text is reported as an error by the API; keep the old board.
		log.Debug().Err(err).Str("session_id", t.id).Msg("Failed to edit game board")
		return nil
	}
	t.board = msg
	return nil
}
