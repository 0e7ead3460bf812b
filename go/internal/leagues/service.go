package leagues

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/mcdev12/survivor/go/internal/identity"
	"github.com/mcdev12/survivor/go/internal/models"
)

// LeaguesApp defines what the service layer needs from the leagues application
type LeaguesApp interface {
	CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error)
	GetLeague(ctx context.Context, id string) (*models.League, error)
	GetLeaguesByUserId(ctx context.Context, userID string) ([]models.League, error)
	GetLeaguesByParticipantId(ctx context.Context, userID string) ([]models.League, error)
	JoinLeague(ctx context.Context, leagueID, userID string) error
	AcceptJoinRequest(ctx context.Context, leagueID, userID, actingUserID string) (*models.League, error)
	DenyJoinRequest(ctx context.Context, leagueID, userID, actingUserID string) (*models.League, error)
	UpdateLeagueStatus(ctx context.Context, leagueID, actingUserID string, status models.LeagueStatus) (*models.League, error)
}

// Service exposes league operations over HTTP
type Service struct {
	app LeaguesApp
}

// NewService creates a new leagues HTTP service
func NewService(app LeaguesApp) *Service {
	return &Service{app: app}
}

// Routes mounts the league endpoints. Every route requires an authenticated caller.
func (s *Service) Routes(r chi.Router) {
	r.Post("/", s.CreateLeague)
	r.Post("/join", s.JoinLeague)
	r.Get("/my-leagues/{participantId}", s.GetLeaguesByParticipantId)
	r.Get("/{userId}", s.GetLeaguesByUserId)
	r.Get("/{leagueId}/details", s.GetLeague)
	r.Patch("/{leagueId}/requests/{userId}/accept", s.AcceptJoinRequest)
	r.Patch("/{leagueId}/requests/{userId}/deny", s.DenyJoinRequest)
	r.Patch("/{leagueId}/status", s.UpdateLeagueStatus)
}

func (s *Service) CreateLeague(w http.ResponseWriter, r *http.Request) {
	var req CreateLeagueRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	req.CreatedBy = identity.UserID(r.Context())

	league, err := s.app.CreateLeague(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.Created(w, league.Redacted())
}

func (s *Service) GetLeague(w http.ResponseWriter, r *http.Request) {
	league, err := s.app.GetLeague(r.Context(), chi.URLParam(r, "leagueId"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, league.Redacted())
}

func (s *Service) GetLeaguesByUserId(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.app.GetLeaguesByUserId(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, redactAll(leagues))
}

func (s *Service) GetLeaguesByParticipantId(w http.ResponseWriter, r *http.Request) {
	leagues, err := s.app.GetLeaguesByParticipantId(r.Context(), chi.URLParam(r, "participantId"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, redactAll(leagues))
}

func (s *Service) JoinLeague(w http.ResponseWriter, r *http.Request) {
	var req JoinLeagueRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := s.app.JoinLeague(r.Context(), req.LeagueID, identity.UserID(r.Context())); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, map[string]string{"message": "Join request sent successfully"})
}

func (s *Service) AcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	league, err := s.app.AcceptJoinRequest(r.Context(),
		chi.URLParam(r, "leagueId"), chi.URLParam(r, "userId"), identity.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, league.Redacted())
}

func (s *Service) DenyJoinRequest(w http.ResponseWriter, r *http.Request) {
	league, err := s.app.DenyJoinRequest(r.Context(),
		chi.URLParam(r, "leagueId"), chi.URLParam(r, "userId"), identity.UserID(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, league.Redacted())
}

func (s *Service) UpdateLeagueStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if req.Status == "" {
		httputil.Error(w, r, apperrors.Validation("Status is required"))
		return
	}
	league, err := s.app.UpdateLeagueStatus(r.Context(), chi.URLParam(r, "leagueId"), identity.UserID(r.Context()), req.Status)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, league.Redacted())
}

func redactAll(leagues []models.League) []models.League {
	out := make([]models.League, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, l.Redacted())
	}
	return out
}
