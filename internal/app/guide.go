package app

import (
	"context"

	"github.com/edgard/wonderfulgo/internal/favorites"
	"github.com/edgard/wonderfulgo/internal/plan"
)

// SpotView is a plan spot annotated with its favorited flag.
type SpotView struct {
	plan.Spot
	Favorited bool
}

// PlanView is a stored plan ready for display.
type PlanView struct {
	Title           string
	GreetingMessage string
	Timestamp       string
	Spots           []SpotView
}

// Guide returns plan history, newest first, with every spot's favorited flag
// computed from the registry as it is now.
func (a *App) Guide(ctx context.Context) []PlanView {
	plans := a.Plans.List(ctx)
	view := a.Projector.Project(ctx, plans)

	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		pv := PlanView{
			Title:           p.Title,
			GreetingMessage: p.GreetingMessage,
			Timestamp:       p.Timestamp,
			Spots:           make([]SpotView, 0, len(p.Spots)),
		}
		for _, s := range p.Spots {
			pv.Spots = append(pv.Spots, SpotView{Spot: s, Favorited: view.IsFavorited(s.Name)})
		}
		out = append(out, pv)
	}
	return out
}

// View returns the most recent favorites projection.
func (a *App) View() favorites.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// OnViewChange registers fn to receive every new projection. Projections are
// recomputed after each favorites mutation, each plan the assistant stores,
// and a reset.
func (a *App) OnViewChange(fn func(favorites.View)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) refresh(ctx context.Context) {
	view := a.Projector.Project(ctx, a.Plans.List(ctx))

	a.mu.Lock()
	a.view = view
	listeners := append([]func(favorites.View){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}
