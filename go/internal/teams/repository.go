package teams

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Repository implements team data access operations. Teams are keyed by name.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new teams repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// ListAllTeams retrieves every mirrored team ordered by name
func (r *Repository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := docstore.FindAs[models.Team](ctx, r.store, models.TeamsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

// GetTeamByName retrieves a mirrored team, nil when absent
func (r *Repository) GetTeamByName(ctx context.Context, name string) (*models.Team, error) {
	var t models.Team
	if err := r.store.Get(ctx, docstore.Doc(models.TeamsCollection, name), &t); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

// UpsertTeams writes teams in one batch
func (r *Repository) UpsertTeams(ctx context.Context, teams []models.Team) error {
	writes := make([]docstore.Write, 0, len(teams))
	for _, t := range teams {
		writes = append(writes, docstore.Write{Ref: docstore.Doc(models.TeamsCollection, t.Name), Value: t})
	}
	if err := r.store.SetAll(ctx, writes); err != nil {
		return fmt.Errorf("failed to upsert teams: %w", err)
	}
	return nil
}
