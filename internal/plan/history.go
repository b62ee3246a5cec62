// Package plan holds generated outing plans and their bounded history.
package plan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/edgard/wonderfulgo/internal/database"
)

// Capacity is the number of most recent plans kept.
const Capacity = 10

// Spot is one recommended place. Name is the natural key used for favoriting.
type Spot struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	PetCondition string `json:"pet_condition"`
	ParkingInfo  string `json:"parking_info,omitempty"`
}

// Plan is one generated itinerary. Plans are immutable once stored.
type Plan struct {
	Title           string `json:"plan_title"`
	GreetingMessage string `json:"greeting_message"`
	Timestamp       string `json:"timestamp,omitempty"`
	Spots           []Spot `json:"spots"`
}

// History stores plans newest first, capped at Capacity.
type History struct {
	mu     sync.Mutex
	store  database.Store
	logger *slog.Logger
}

// NewHistory creates a History on store.
func NewHistory(store database.Store, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &History{
		store:  store,
		logger: logger.With("component", "plan_history"),
	}
}

// Prepend inserts p as the newest plan, then drops the oldest beyond Capacity.
func (h *History) Prepend(ctx context.Context, p Plan) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	plans := append([]Plan{p}, h.load(ctx)...)
	if len(plans) > Capacity {
		h.logger.DebugContext(ctx, "Evicted oldest plans", "count", len(plans)-Capacity)
		plans = plans[:Capacity]
	}

	if err := h.store.Set(ctx, database.KeyPlanHistory, plans); err != nil {
		return fmt.Errorf("failed to save plan history: %w", err)
	}
	h.logger.DebugContext(ctx, "Plan stored", "title", p.Title, "spots", len(p.Spots), "length", len(plans))
	return nil
}

// List returns the stored plans, newest first.
func (h *History) List(ctx context.Context) []Plan {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *History) load(ctx context.Context) []Plan {
	plans, ok := database.Decode[[]Plan](ctx, h.store, database.KeyPlanHistory)
	if !ok {
		return []Plan{}
	}
	return plans
}
