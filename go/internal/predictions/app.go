package predictions

import (
	"context"
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

// PredictionsRepository defines what the app layer needs from the repository
type PredictionsRepository interface {
	GetPredictionsByUser(ctx context.Context, userID string) ([]models.Prediction, error)
}

// Submitter records a prediction against league state
type Submitter interface {
	SubmitPrediction(ctx context.Context, pred *models.Prediction) error
}

// FixtureSource supplies the fixtures a pick is checked against
type FixtureSource interface {
	Matchday(ctx context.Context, n int) (models.Matchday, error)
}

// App handles prediction submission and per-user reads
type App struct {
	repo     PredictionsRepository
	leagues  Submitter
	fixtures FixtureSource
	clock    clockwork.Clock
}

// NewApp creates a new predictions App. fixtures may be nil, in which case
// picks are not checked against the feed.
func NewApp(repo PredictionsRepository, leagues Submitter, fixtures FixtureSource, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{repo: repo, leagues: leagues, fixtures: fixtures, clock: clock}
}

// MakePrediction validates and records one pick per (league, user, matchday).
func (a *App) MakePrediction(ctx context.Context, req MakePredictionRequest) (*models.Prediction, error) {
	if err := validateMakePredictionRequest(req); err != nil {
		return nil, err
	}

	outcome := req.PredictionOutcome
	if outcome == "" {
		outcome = models.OutcomeDefault
	}
	now := a.clock.Now().UTC()

	teamName := req.TeamName
	if a.fixtures != nil {
		md, err := a.fixtures.Matchday(ctx, req.Matchday)
		if err != nil {
			return nil, err
		}
		match, ok := md.MatchFor(req.TeamID)
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("Team %d does not play in matchday %d", req.TeamID, req.Matchday))
		}
		if !now.Before(match.UTCDate) {
			return nil, apperrors.Validation("The match for this team has already started")
		}
		if teamName == "" {
			teamName = teamNameIn(match, req.TeamID)
		}
	}

	pred := &models.Prediction{
		ID:                models.PredictionID(req.LeagueID, req.UserID, req.Matchday),
		UserID:            req.UserID,
		LeagueID:          req.LeagueID,
		Matchday:          req.Matchday,
		TeamID:            req.TeamID,
		TeamName:          teamName,
		Username:          req.Username,
		PredictionOutcome: outcome,
		Source:            models.SourceUser,
		Status:            models.PredictionPending,
		Timestamp:         now,
	}
	if err := a.leagues.SubmitPrediction(ctx, pred); err != nil {
		return nil, err
	}

	log.Info().
		Str("prediction_id", pred.ID).
		Str("league_id", pred.LeagueID).
		Str("user_id", pred.UserID).
		Int("matchday", pred.Matchday).
		Int("team_id", pred.TeamID).
		Msg("prediction saved")
	return pred, nil
}

// PredictionsForUser lists every pick userID made.
func (a *App) PredictionsForUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	if userID == "" {
		return nil, apperrors.Validation("User id is required")
	}
	preds, err := a.repo.GetPredictionsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("Error fetching predictions", err)
	}
	return preds, nil
}

// StatsForUser counts userID's picks and how many were correct.
func (a *App) StatsForUser(ctx context.Context, userID string) (Stats, error) {
	preds, err := a.PredictionsForUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	for _, p := range preds {
		s.TotalPredictions++
		if p.IsCorrect {
			s.CorrectPredictions++
		}
	}
	if s.TotalPredictions > 0 {
		s.Accuracy = math.Round(float64(s.CorrectPredictions)/float64(s.TotalPredictions)*10000) / 100
	}
	return s, nil
}

func validateMakePredictionRequest(req MakePredictionRequest) error {
	switch {
	case req.UserID == "":
		return apperrors.New(apperrors.CodeUnauthenticated, "User not authenticated")
	case req.LeagueID == "":
		return apperrors.Validation("League id is required")
	case req.Matchday <= 0:
		return apperrors.Validation("Matchday must be a positive number")
	case req.TeamID <= 0:
		return apperrors.Validation("Team id is required")
	}
	switch req.PredictionOutcome {
	case "", models.OutcomeDefault, models.OutcomeWin, models.OutcomeLose, models.OutcomeDraw:
		return nil
	default:
		return apperrors.Validation("predictionOutcome must be one of DEFAULT, WIN, LOSE, DRAW")
	}
}

func teamNameIn(m models.Match, teamID int) string {
	if m.HomeTeam.ID == teamID {
		return m.HomeTeam.Name
	}
	return m.AwayTeam.Name
}
