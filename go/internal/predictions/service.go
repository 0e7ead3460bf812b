package predictions

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/mcdev12/survivor/go/internal/identity"
	"github.com/mcdev12/survivor/go/internal/models"
)

// PredictionsApp defines what the service layer needs from the predictions application
type PredictionsApp interface {
	MakePrediction(ctx context.Context, req MakePredictionRequest) (*models.Prediction, error)
	PredictionsForUser(ctx context.Context, userID string) ([]models.Prediction, error)
	StatsForUser(ctx context.Context, userID string) (Stats, error)
}

// Service exposes prediction operations over HTTP
type Service struct {
	app PredictionsApp
}

// NewService creates a new predictions HTTP service
func NewService(app PredictionsApp) *Service {
	return &Service{app: app}
}

// Routes mounts the prediction endpoints on an authenticated router.
func (s *Service) Routes(r chi.Router) {
	r.Post("/makePredictions", s.MakePrediction)
	r.Get("/users/predictions", s.GetPredictions)
	r.Get("/users/stats", s.GetStats)
}

func (s *Service) MakePrediction(w http.ResponseWriter, r *http.Request) {
	var req MakePredictionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	req.UserID = identity.UserID(r.Context())

	pred, err := s.app.MakePrediction(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, pred)
}

func (s *Service) GetPredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := s.app.PredictionsForUser(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, preds)
}

func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.StatsForUser(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, stats)
}
