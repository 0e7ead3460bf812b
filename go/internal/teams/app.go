package teams

import (
	"context"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

// TeamsRepository defines what the app layer needs from the repository
type TeamsRepository interface {
	ListAllTeams(ctx context.Context) ([]models.Team, error)
	GetTeamByName(ctx context.Context, name string) (*models.Team, error)
	UpsertTeams(ctx context.Context, teams []models.Team) error
}

// App handles teams business logic
type App struct {
	repo     TeamsRepository
	provider Provider
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository, provider Provider) *App {
	return &App{
		repo:     repo,
		provider: provider,
	}
}

// ListTeams returns the mirrored teams, syncing from the feed first when
// the mirror is empty.
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := a.repo.ListAllTeams(ctx)
	if err != nil {
		return nil, apperrors.Persistence("Error fetching teams", err)
	}
	if len(teams) > 0 {
		return teams, nil
	}

	if _, err := a.SyncTeamsFromAPI(ctx); err != nil {
		return nil, err
	}
	teams, err = a.repo.ListAllTeams(ctx)
	if err != nil {
		return nil, apperrors.Persistence("Error fetching teams", err)
	}
	return teams, nil
}

// SyncTeamsFromAPI mirrors the feed's teams into the store
func (a *App) SyncTeamsFromAPI(ctx context.Context) (*SyncResult, error) {
	apiTeams, err := a.provider.Teams(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{TotalProcessed: len(apiTeams)}
	for _, t := range apiTeams {
		existing, err := a.repo.GetTeamByName(ctx, t.Name)
		if err != nil {
			return nil, apperrors.Persistence("Error fetching team", err)
		}
		if existing == nil {
			result.Created++
		} else {
			result.Updated++
		}
	}
	if err := a.repo.UpsertTeams(ctx, apiTeams); err != nil {
		return nil, apperrors.Persistence("Error saving teams", err)
	}

	log.Info().
		Int("processed", result.TotalProcessed).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Msg("teams sync completed")
	return result, nil
}
