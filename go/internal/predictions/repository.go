package predictions

import (
	"context"
	"fmt"
	"sort"

	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Repository implements prediction read operations. Writes go through the
// leagues app so they share a transaction with the participant update.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new predictions repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// GetPredictionsByUser retrieves every prediction userID made, oldest matchday first
func (r *Repository) GetPredictionsByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	preds, err := docstore.FindAs[models.Prediction](ctx, r.store, models.PredictionsCollection,
		docstore.Where("userId", docstore.OpEqual, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions by user: %w", err)
	}
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Matchday != preds[j].Matchday {
			return preds[i].Matchday < preds[j].Matchday
		}
		return preds[i].LeagueID < preds[j].LeagueID
	})
	return preds, nil
}

// GetPendingByMatchday retrieves the unsettled predictions of matchday
func (r *Repository) GetPendingByMatchday(ctx context.Context, matchday int) ([]models.Prediction, error) {
	preds, err := docstore.FindAs[models.Prediction](ctx, r.store, models.PredictionsCollection,
		docstore.Where("matchday", docstore.OpEqual, matchday),
		docstore.Where("status", docstore.OpEqual, string(models.PredictionPending)))
	if err != nil {
		return nil, fmt.Errorf("failed to get pending predictions: %w", err)
	}
	return preds, nil
}

// GetPredictionsByLeagueMatchday retrieves every prediction of a league for matchday
func (r *Repository) GetPredictionsByLeagueMatchday(ctx context.Context, leagueID string, matchday int) ([]models.Prediction, error) {
	preds, err := docstore.FindAs[models.Prediction](ctx, r.store, models.PredictionsCollection,
		docstore.Where("leagueId", docstore.OpEqual, leagueID),
		docstore.Where("matchday", docstore.OpEqual, matchday))
	if err != nil {
		return nil, fmt.Errorf("failed to get league predictions: %w", err)
	}
	return preds, nil
}
