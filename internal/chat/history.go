// Package chat keeps the bounded, id-addressable conversation transcript.
package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/edgard/wonderfulgo/internal/clock"
	"github.com/edgard/wonderfulgo/internal/database"
)

// Capacity is the number of most recent messages kept.
const Capacity = 50

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"

	// legacySenderAI is how older transcripts marked assistant messages.
	legacySenderAI Sender = "ai"
)

// Message is one transcript entry. The JSON shape is also what the
// assistant service receives as history.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// History is the chat transcript, oldest first, capped at Capacity entries.
type History struct {
	mu     sync.Mutex
	store  database.Store
	clock  clock.Clock
	newID  func() string
	logger *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithClock sets the clock used for message timestamps.
func WithClock(c clock.Clock) Option {
	return func(h *History) { h.clock = c }
}

// WithIDGenerator replaces the message id source.
func WithIDGenerator(gen func() string) Option {
	return func(h *History) { h.newID = gen }
}

// NewHistory creates a History on store.
func NewHistory(store database.Store, logger *slog.Logger, opts ...Option) *History {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &History{
		store:  store,
		clock:  clock.System,
		newID:  NewID,
		logger: logger.With("component", "chat_history"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewID returns a UUIDv7: a millisecond timestamp followed by random bits,
// so ids created in the same millisecond still differ.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Append adds a message, persists the transcript trimmed to Capacity, and
// returns the stored message.
func (h *History) Append(ctx context.Context, content string, sender Sender) (Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{
		ID:        h.newID(),
		Content:   content,
		Sender:    sender,
		Timestamp: h.clock.Now(),
	}

	messages := append(h.load(ctx), msg)
	if len(messages) > Capacity {
		evicted := len(messages) - Capacity
		messages = messages[evicted:]
		h.logger.DebugContext(ctx, "Evicted oldest chat messages", "count", evicted)
	}

	if err := h.store.Set(ctx, database.KeyChatHistory, messages); err != nil {
		return Message{}, fmt.Errorf("failed to save chat history: %w", err)
	}
	h.logger.DebugContext(ctx, "Chat message appended", "id", msg.ID, "sender", sender, "length", len(messages))
	return msg, nil
}

// Delete removes the message with id. Unknown ids are ignored.
func (h *History) Delete(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages := h.load(ctx)
	kept := messages[:0]
	for _, m := range messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(messages) {
		return nil
	}

	if err := h.store.Set(ctx, database.KeyChatHistory, kept); err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	h.logger.DebugContext(ctx, "Chat message deleted", "id", id)
	return nil
}

// List returns the transcript, oldest first.
func (h *History) List(ctx context.Context) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// load reads the transcript, normalising legacy senders and giving
// id-less entries an id so they can be deleted. Must hold h.mu.
func (h *History) load(ctx context.Context) []Message {
	messages, ok := database.Decode[[]Message](ctx, h.store, database.KeyChatHistory)
	if !ok {
		return []Message{}
	}

	backfilled := 0
	for i := range messages {
		if messages[i].Sender == legacySenderAI {
			messages[i].Sender = SenderAssistant
		}
		if messages[i].ID == "" {
			messages[i].ID = h.newID()
			backfilled++
		}
	}

	if backfilled > 0 {
		if err := h.store.Set(ctx, database.KeyChatHistory, messages); err != nil {
			h.logger.WarnContext(ctx, "Failed to persist backfilled message ids", "error", err)
		} else {
			h.logger.InfoContext(ctx, "Assigned ids to stored chat messages", "count", backfilled)
		}
	}
	return messages
}
