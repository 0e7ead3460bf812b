package leagues

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/models"
)

// Txn is the set of reads and writes a league mutation may perform inside
// one store transaction. Reads must come before writes.
type Txn interface {
	League(id string) (*models.League, error)
	Prediction(id string) (*models.Prediction, error)
	SaveLeague(l *models.League) error
	SaveMembership(l *models.League, p models.Participant) error
	CreatePrediction(p *models.Prediction) error
	SavePrediction(p *models.Prediction) error
}

// Repository implements league data access operations
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new leagues repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// CreateLeague writes the league and the creator's membership mirror together
func (r *Repository) CreateLeague(ctx context.Context, l *models.League) error {
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if err := tx.Create(leagueRef(l.ID), l); err != nil {
			return fmt.Errorf("failed to create league: %w", err)
		}
		st := &storeTxn{tx: tx}
		for _, p := range l.Participants {
			if err := st.SaveMembership(l, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, id string) (*models.League, error) {
	var l models.League
	if err := r.store.Get(ctx, leagueRef(id), &l); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return &l, nil
}

// GetLeaguesByCreator retrieves leagues created by userID
func (r *Repository) GetLeaguesByCreator(ctx context.Context, userID string) ([]models.League, error) {
	leagues, err := docstore.FindAs[models.League](ctx, r.store, models.LeaguesCollection,
		docstore.Where("createdBy", docstore.OpEqual, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get leagues by creator: %w", err)
	}
	return leagues, nil
}

// GetLeaguesByMember retrieves leagues where userID is a participant OR has a
// pending request. The two predicates are queried separately and merged.
func (r *Repository) GetLeaguesByMember(ctx context.Context, userID string) ([]models.League, error) {
	members, err := docstore.FindAs[models.League](ctx, r.store, models.LeaguesCollection,
		docstore.Where("memberIds", docstore.OpArrayContains, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get leagues by participant: %w", err)
	}
	pending, err := docstore.FindAs[models.League](ctx, r.store, models.LeaguesCollection,
		docstore.Where("pendingRequests", docstore.OpArrayContains, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get leagues by pending request: %w", err)
	}

	seen := make(map[string]bool, len(members)+len(pending))
	out := make([]models.League, 0, len(members)+len(pending))
	for _, l := range append(members, pending...) {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out, nil
}

// GetLeaguesByStatus retrieves every league in status
func (r *Repository) GetLeaguesByStatus(ctx context.Context, status models.LeagueStatus) ([]models.League, error) {
	leagues, err := docstore.FindAs[models.League](ctx, r.store, models.LeaguesCollection,
		docstore.Where("status", docstore.OpEqual, string(status)))
	if err != nil {
		return nil, fmt.Errorf("failed to get leagues by status: %w", err)
	}
	return leagues, nil
}

// InTx runs fn inside one store transaction
func (r *Repository) InTx(ctx context.Context, fn func(tx Txn) error) error {
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return fn(&storeTxn{tx: tx})
	})
}

type storeTxn struct {
	tx docstore.Tx
}

func (t *storeTxn) League(id string) (*models.League, error) {
	var l models.League
	if err := t.tx.Get(leagueRef(id), &l); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return &l, nil
}

func (t *storeTxn) Prediction(id string) (*models.Prediction, error) {
	var p models.Prediction
	if err := t.tx.Get(predictionRef(id), &p); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.NotFound("Prediction not found")
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

func (t *storeTxn) SaveLeague(l *models.League) error {
	if err := t.tx.Set(leagueRef(l.ID), l); err != nil {
		return fmt.Errorf("failed to save league: %w", err)
	}
	return nil
}

func (t *storeTxn) SaveMembership(l *models.League, p models.Participant) error {
	ref := docstore.Doc(docstore.Doc(models.UsersCollection, p.UserID).Sub(models.MembershipsCollection), l.ID)
	if err := t.tx.Set(ref, models.MembershipOf(l, p, l.UpdatedAt)); err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}

func (t *storeTxn) CreatePrediction(p *models.Prediction) error {
	if err := t.tx.Create(predictionRef(p.ID), p); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperrors.ErrPredictionExists
		}
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

func (t *storeTxn) SavePrediction(p *models.Prediction) error {
	if err := t.tx.Set(predictionRef(p.ID), p); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

func leagueRef(id string) docstore.Ref {
	return docstore.Doc(models.LeaguesCollection, id)
}

func predictionRef(id string) docstore.Ref {
	return docstore.Doc(models.PredictionsCollection, id)
}
