package favorites_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wonderfulgo/internal/clock"
	"github.com/edgard/wonderfulgo/internal/database"
	"github.com/edgard/wonderfulgo/internal/favorites"
	"github.com/edgard/wonderfulgo/internal/plan"
)

var savedAt = clock.Fixed(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))

func cafeA() favorites.SpotRef {
	return favorites.SpotRef{Name: "Cafe A", Address: "1-1 Daikanyama", Description: "Dog menu available"}
}

func TestRegistry_ToggleTwice(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)

	outcome, err := r.Toggle(ctx, cafeA(), "try the pancakes")
	require.NoError(t, err)
	assert.Equal(t, favorites.Added, outcome)

	got := r.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, favorites.Favorite{
		Name:        "Cafe A",
		Address:     "1-1 Daikanyama",
		Description: "Dog menu available",
		UserMemo:    "try the pancakes",
		SavedAt:     "10/15 12:00",
	}, got[0])

	outcome, err = r.Toggle(ctx, cafeA(), "")
	require.NoError(t, err)
	assert.Equal(t, favorites.Removed, outcome)
	assert.Empty(t, r.List(ctx))
	assert.False(t, r.Contains(ctx, "Cafe A"))
}

func TestRegistry_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)

	for _, name := range []string{"", "   "} {
		_, err := r.Toggle(ctx, favorites.SpotRef{Name: name}, "")
		assert.ErrorIs(t, err, favorites.ErrBlankName)
	}
	assert.Empty(t, r.List(ctx))
}

func TestRegistry_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()

	_, err := favorites.NewRegistry(store, savedAt, nil).Toggle(ctx, cafeA(), "")
	require.NoError(t, err)

	fresh := favorites.NewRegistry(store, savedAt, nil)
	got := fresh.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "Cafe A", got[0].Name)
}

func TestRegistry_NameIsTheKey(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)

	_, err := r.Toggle(ctx, cafeA(), "")
	require.NoError(t, err)

	// Same name at a different address is the same favorite.
	outcome, err := r.Toggle(ctx, favorites.SpotRef{Name: "Cafe A", Address: "elsewhere"}, "")
	require.NoError(t, err)
	assert.Equal(t, favorites.Removed, outcome)
	assert.Empty(t, r.List(ctx))
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)

	for _, name := range []string{"A", "B", "C"} {
		_, err := r.Toggle(ctx, favorites.SpotRef{Name: name}, "")
		require.NoError(t, err)
	}

	require.NoError(t, r.Remove(ctx, "B"))
	require.NoError(t, r.Remove(ctx, "B"))
	require.NoError(t, r.Remove(ctx, "missing"))

	got := r.List(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "C", got[1].Name)

	rev := favorites.Reversed(got)
	assert.Equal(t, "C", rev[0].Name)
	assert.Equal(t, "A", got[0].Name, "Reversed must not modify its input")
}

func TestRegistry_OnChangeFiresAfterMutations(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)

	calls := 0
	r.OnChange(func() { calls++ })

	_, err := r.Toggle(ctx, cafeA(), "")
	require.NoError(t, err)
	require.NoError(t, r.Remove(ctx, "Cafe A"))
	require.NoError(t, r.Remove(ctx, "Cafe A"))

	assert.Equal(t, 2, calls, "a no-op Remove does not notify")
}

func TestRegistry_CorruptStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	store.SetRaw(database.KeyFavorites, []byte(`{"broken"`))

	r := favorites.NewRegistry(store, savedAt, nil)
	assert.Empty(t, r.List(ctx))

	outcome, err := r.Toggle(ctx, cafeA(), "")
	require.NoError(t, err)
	assert.Equal(t, favorites.Added, outcome)
}

func plans() []plan.Plan {
	return []plan.Plan{
		{Title: "new", Spots: []plan.Spot{{Name: "Cafe A"}, {Name: "Park B"}}},
		{Title: "old", Spots: []plan.Spot{{Name: "Beach C"}, {Name: "Cafe A"}}},
	}
}

func TestFavoritedNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		favs     []string
		expected []string
	}{
		{name: "no favorites", favs: nil, expected: nil},
		{name: "intersection only", favs: []string{"Cafe A", "Museum Z"}, expected: []string{"Cafe A"}},
		{name: "across plans", favs: []string{"Beach C", "Park B"}, expected: []string{"Beach C", "Park B"}},
		{name: "insertion order irrelevant", favs: []string{"Park B", "Beach C"}, expected: []string{"Beach C", "Park B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favs := make([]favorites.Favorite, len(tt.favs))
			for i, n := range tt.favs {
				favs[i] = favorites.Favorite{Name: n}
			}

			view := favorites.FavoritedNames(favs, plans())
			assert.Len(t, view, len(tt.expected))
			for _, n := range tt.expected {
				assert.True(t, view.IsFavorited(n), n)
			}
			assert.False(t, view.IsFavorited("Museum Z"))
		})
	}
}

func TestProjector_ReflectsTogglesImmediately(t *testing.T) {
	ctx := context.Background()
	r := favorites.NewRegistry(database.NewMemoryStore(), savedAt, nil)
	p := favorites.NewProjector(r)

	assert.False(t, p.Project(ctx, plans()).IsFavorited("Cafe A"))

	_, err := r.Toggle(ctx, cafeA(), "")
	require.NoError(t, err)
	assert.True(t, p.Project(ctx, plans()).IsFavorited("Cafe A"))

	require.NoError(t, r.Remove(ctx, "Cafe A"))
	assert.False(t, p.Project(ctx, plans()).IsFavorited("Cafe A"))
}
