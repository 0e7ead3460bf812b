package results

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Repository mirrors fixtures at matches/{id}
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new results repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// SaveMatches upserts matches in one batch
func (r *Repository) SaveMatches(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	writes := make([]docstore.Write, 0, len(matches))
	for _, m := range matches {
		writes = append(writes, docstore.Write{Ref: docstore.Doc(models.MatchesCollection, strconv.Itoa(m.ID)), Value: m})
	}
	if err := r.store.SetAll(ctx, writes); err != nil {
		return fmt.Errorf("failed to save matches: %w", err)
	}
	return nil
}

// GetMatchesByMatchday reads the mirrored fixtures of matchday
func (r *Repository) GetMatchesByMatchday(ctx context.Context, matchday int) ([]models.Match, error) {
	matches, err := docstore.FindAs[models.Match](ctx, r.store, models.MatchesCollection,
		docstore.Where("matchday", docstore.OpEqual, matchday))
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	return matches, nil
}
