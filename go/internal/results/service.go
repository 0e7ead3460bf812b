package results

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/httputil"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ResultsApp defines what the service layer needs from the results application
type ResultsApp interface {
	CurrentMatchday(ctx context.Context) (int, error)
	MatchdayResults(ctx context.Context, n int) (models.Matchday, error)
	CurrentMatchdayResults(ctx context.Context) (models.Matchday, error)
	RunDaily(ctx context.Context) (DailyReport, error)
}

// Rearmer re-runs reminder arming after the daily job
type Rearmer interface {
	Arm(ctx context.Context) error
}

// Service exposes the feed endpoints and the manual daily trigger
type Service struct {
	app     ResultsApp
	rearmer Rearmer
}

// NewService creates a new results HTTP service. rearmer may be nil.
func NewService(app ResultsApp, rearmer Rearmer) *Service {
	return &Service{app: app, rearmer: rearmer}
}

func (s *Service) Routes(r chi.Router) {
	r.Get("/fetchMatchdayResults/{matchday}", s.FetchMatchdayResults)
	r.Get("/fetchCurrentMatchday", s.FetchCurrentMatchday)
	r.Get("/fetchCurrentMatchdayResults", s.FetchCurrentMatchdayResults)
}

// JobRoutes mounts the daily job trigger.
func (s *Service) JobRoutes(r chi.Router) {
	r.Post("/scheduledCronJob", s.ScheduledCronJob)
}

func (s *Service) FetchMatchdayResults(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "matchday"))
	if err != nil || n <= 0 {
		httputil.Error(w, r, apperrors.Validation("Matchday must be a positive number"))
		return
	}
	md, err := s.app.MatchdayResults(r.Context(), n)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, md)
}

func (s *Service) FetchCurrentMatchday(w http.ResponseWriter, r *http.Request) {
	n, err := s.app.CurrentMatchday(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, map[string]int{"currentMatchday": n})
}

func (s *Service) FetchCurrentMatchdayResults(w http.ResponseWriter, r *http.Request) {
	md, err := s.app.CurrentMatchdayResults(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.OK(w, md)
}

func (s *Service) ScheduledCronJob(w http.ResponseWriter, r *http.Request) {
	report, err := s.app.RunDaily(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if s.rearmer != nil {
		if err := s.rearmer.Arm(r.Context()); err != nil {
			log.Error().Err(err).Msg("reminder arming after daily job failed")
		}
	}
	httputil.OK(w, report)
}
