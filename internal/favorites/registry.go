// Package favorites keeps the user's saved spots, keyed by spot name, and
// projects favorite status onto plan history.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/edgard/wonderfulgo/internal/clock"
	"github.com/edgard/wonderfulgo/internal/database"
)

// Favorite is a saved spot. At most one exists per Name.
type Favorite struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	UserMemo    string `json:"user_memo"`
	SavedAt     string `json:"saved_at"`
}

// SpotRef identifies the spot being toggled.
type SpotRef struct {
	Name        string
	Address     string
	Description string
}

// ErrBlankName is returned by Toggle for a spot without a name.
var ErrBlankName = errors.New("spot name is required")

// Outcome reports what a Toggle did.
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
)

// Registry is the favorites set, stored in insertion order.
type Registry struct {
	mu        sync.Mutex
	store     database.Store
	clock     clock.Clock
	listeners []func()
	logger    *slog.Logger
}

// NewRegistry creates a Registry on store. A nil clock uses wall time.
func NewRegistry(store database.Store, c clock.Clock, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c == nil {
		c = clock.System
	}
	return &Registry{
		store:  store,
		clock:  c,
		logger: logger.With("component", "favorites"),
	}
}

// OnChange registers fn to run after every successful Toggle or Remove.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Toggle removes the favorite named spot.Name if it exists, otherwise saves
// spot with memo. It is the only way a favorite is created.
func (r *Registry) Toggle(ctx context.Context, spot SpotRef, memo string) (Outcome, error) {
	if strings.TrimSpace(spot.Name) == "" {
		return "", ErrBlankName
	}

	r.mu.Lock()
	favs := r.load(ctx)

	var outcome Outcome
	if idx := indexOf(favs, spot.Name); idx >= 0 {
		favs = slices.Delete(favs, idx, idx+1)
		outcome = Removed
	} else {
		favs = append(favs, Favorite{
			Name:        spot.Name,
			Address:     spot.Address,
			Description: spot.Description,
			UserMemo:    memo,
			SavedAt:     r.clock.Now(),
		})
		outcome = Added
	}

	if err := r.store.Set(ctx, database.KeyFavorites, favs); err != nil {
		r.mu.Unlock()
		return "", fmt.Errorf("failed to save favorites: %w", err)
	}
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "Favorite toggled", "name", spot.Name, "outcome", outcome)
	notify(listeners)
	return outcome, nil
}

// Remove deletes the favorite named name, if present.
func (r *Registry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	favs := r.load(ctx)

	idx := indexOf(favs, name)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	favs = slices.Delete(favs, idx, idx+1)

	if err := r.store.Set(ctx, database.KeyFavorites, favs); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "Favorite removed", "name", name)
	notify(listeners)
	return nil
}

// List returns favorites in insertion order, most recently added last.
func (r *Registry) List(ctx context.Context) []Favorite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Contains reports whether a favorite named name exists.
func (r *Registry) Contains(ctx context.Context, name string) bool {
	return indexOf(r.List(ctx), name) >= 0
}

// Reversed returns favs newest first, the order they are usually displayed in.
func Reversed(favs []Favorite) []Favorite {
	out := slices.Clone(favs)
	slices.Reverse(out)
	return out
}

func (r *Registry) load(ctx context.Context) []Favorite {
	favs, ok := database.Decode[[]Favorite](ctx, r.store, database.KeyFavorites)
	if !ok {
		return []Favorite{}
	}
	return favs
}

func indexOf(favs []Favorite, name string) int {
	return slices.IndexFunc(favs, func(f Favorite) bool { return f.Name == name })
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
