package handler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const (
	// MessageDeleteInterval is how long game boards stay in the chat.
	MessageDeleteInterval = 30 * time.Minute
	// MessageCleanPeriod is how often old boards are swept.
	MessageCleanPeriod = 5 * time.Minute
)

// Deleter is the part of *tele.Bot the cleaner needs.
type Deleter interface {
	Delete(msg tele.Editable) error
}

// TrackedMessage represents a message to be deleted later.
type TrackedMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// MessageCleaner deletes bot messages once they are older than ttl.
type MessageCleaner struct {
	bot Deleter
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	messages []TrackedMessage
}

// NewMessageCleaner creates a MessageCleaner.
func NewMessageCleaner(bot Deleter, ttl time.Duration) *MessageCleaner {
	return &MessageCleaner{bot: bot, ttl: ttl, now: time.Now}
}

// Track schedules msg for deletion.
func (m *MessageCleaner) Track(msg *tele.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, TrackedMessage{ChatID: msg.Chat.ID, MessageID: msg.ID, SentAt: m.now()})
}

// Len returns the number of tracked messages.
func (m *MessageCleaner) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Run sweeps every period until ctx is done.
func (m *MessageCleaner) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Clean()
		}
	}
}

// Clean deletes messages older than ttl.
func (m *MessageCleaner) Clean() {
	m.mu.Lock()
	now := m.now()
	var expired, remaining []TrackedMessage
	for _, msg := range m.messages {
		if now.Sub(msg.SentAt) >= m.ttl {
			expired = append(expired, msg)
		} else {
			remaining = append(remaining, msg)
		}
	}
	m.messages = remaining
	m.mu.Unlock()

	for _, msg := range expired {
		err := m.bot.Delete(&tele.Message{ID: msg.MessageID, Chat: &tele.Chat{ID: msg.ChatID}})
		if err != nil {
			log.Debug().Err(err).Int("msg_id", msg.MessageID).Msg("Failed to delete old message")
		}
	}
}
