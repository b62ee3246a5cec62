package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edgard/wonderfulgo/internal/database"
)

// Repository reads and writes the profile record and the avatar image.
type Repository struct {
	store       database.Store
	validate    *validator.Validate
	knownBreeds map[string]struct{}
	logger      *slog.Logger
}

// NewRepository creates a Repository on store. knownBreeds is the list of
// selector values; in a profile saved without its selector, a breed outside
// the list is read back through the "other" override. An empty list disables
// that mapping.
func NewRepository(store database.Store, logger *slog.Logger, knownBreeds []string) *Repository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	known := make(map[string]struct{}, len(knownBreeds))
	for _, b := range knownBreeds {
		known[b] = struct{}{}
	}
	return &Repository{
		store:       store,
		validate:    validator.New(),
		knownBreeds: known,
		logger:      logger.With("component", "profile_repository"),
	}
}

// storedRecord is the persisted profile: breed holds the effective breed and
// breed_selector the value the user picked. Blobs without the selector were
// written by older clients.
type storedRecord struct {
	Record
	BreedSelector *string `json:"breed_selector,omitempty"`
}

// Save overwrites the stored profile with rec, storing the effective breed.
func (r *Repository) Save(ctx context.Context, rec Record) error {
	selector := rec.Breed
	stored := storedRecord{Record: rec, BreedSelector: &selector}
	stored.Breed = rec.EffectiveBreed()

	if err := r.store.Set(ctx, database.KeyProfile, stored); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	r.logger.DebugContext(ctx, "Profile saved", "dog_name", rec.DogName, "breed", stored.Breed)
	return nil
}

// Load returns the stored profile, or an empty Record when there is none.
func (r *Repository) Load(ctx context.Context) Record {
	stored, ok := database.Decode[storedRecord](ctx, r.store, database.KeyProfile)
	if !ok {
		return Record{}
	}

	rec := stored.Record
	if stored.BreedSelector != nil {
		rec.Breed = *stored.BreedSelector
		return rec
	}

	switch {
	case rec.Breed == BreedOther:
	case strings.TrimSpace(rec.OtherBreed) != "" && rec.Breed == rec.OtherBreed:
		rec.Breed = BreedOther
	case rec.Breed != "" && len(r.knownBreeds) > 0 && !r.isKnown(rec.Breed):
		rec.OtherBreed = rec.Breed
		rec.Breed = BreedOther
	}
	return rec
}

// SaveAvatar stores the avatar image. dataURI must be a data: URI.
func (r *Repository) SaveAvatar(ctx context.Context, dataURI string) error {
	if err := r.validate.Var(dataURI, "required,datauri"); err != nil {
		return fmt.Errorf("avatar must be a data URI: %w", err)
	}
	if err := r.store.Set(ctx, database.KeyAvatar, dataURI); err != nil {
		return fmt.Errorf("failed to save avatar: %w", err)
	}
	r.logger.DebugContext(ctx, "Avatar saved", "bytes", len(dataURI))
	return nil
}

// LoadAvatar returns the stored avatar data URI, if any.
func (r *Repository) LoadAvatar(ctx context.Context) (string, bool) {
	uri, ok := database.Decode[string](ctx, r.store, database.KeyAvatar)
	if !ok || uri == "" {
		return "", false
	}
	return uri, true
}

func (r *Repository) isKnown(breed string) bool {
	_, ok := r.knownBreeds[breed]
	return ok
}
