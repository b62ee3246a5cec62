package favorites

import (
	"context"

	"github.com/edgard/wonderfulgo/internal/plan"
)

// View is the favorite status of the spots in a set of plans.
type View map[string]struct{}

// IsFavorited reports whether the spot named name is a favorite.
func (v View) IsFavorited(name string) bool {
	_, ok := v[name]
	return ok
}

// FavoritedNames returns the names of spots in plans that are also in favs.
func FavoritedNames(favs []Favorite, plans []plan.Plan) View {
	saved := make(map[string]struct{}, len(favs))
	for _, f := range favs {
		saved[f.Name] = struct{}{}
	}

	view := make(View)
	for _, p := range plans {
		for _, s := range p.Spots {
			if _, ok := saved[s.Name]; ok {
				view[s.Name] = struct{}{}
			}
		}
	}
	return view
}

// Projector derives favorite status for plans from the registry. It holds
// no state; every call re-reads the registry.
type Projector struct {
	registry *Registry
}

// NewProjector creates a Projector over registry.
func NewProjector(registry *Registry) *Projector {
	return &Projector{registry: registry}
}

// Project returns the favorite status of the spots in plans.
func (p *Projector) Project(ctx context.Context, plans []plan.Plan) View {
	return FavoritedNames(p.registry.List(ctx), plans)
}
