package teams

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/mcdev12/survivor/go/internal/models"
)

// TeamsApp defines what the service layer needs from the teams application
type TeamsApp interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	SyncTeamsFromAPI(ctx context.Context) (*SyncResult, error)
}

// Service exposes team operations over HTTP
type Service struct {
	app TeamsApp
}

// NewService creates a new teams HTTP service
func NewService(app TeamsApp) *Service {
	return &Service{
		app: app,
	}
}

func (s *Service) Routes(r chi.Router) {
	r.Get("/fetchTeams", s.ListTeams)
	r.Post("/syncTeams", s.SyncTeams)
}

// ListTeams answers with the competition's teams
func (s *Service) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.app.ListTeams(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, teams)
}

// SyncTeams refreshes the mirror from the feed
func (s *Service) SyncTeams(w http.ResponseWriter, r *http.Request) {
	result, err := s.app.SyncTeamsFromAPI(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, result)
}
