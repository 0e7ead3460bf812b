package leagues

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/events"
	"github.com/mcdev12/survivor/go/internal/metrics"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

// LeaguesRepository defines what the app layer needs from the repository
type LeaguesRepository interface {
	CreateLeague(ctx context.Context, l *models.League) error
	GetLeague(ctx context.Context, id string) (*models.League, error)
	GetLeaguesByCreator(ctx context.Context, userID string) ([]models.League, error)
	GetLeaguesByMember(ctx context.Context, userID string) ([]models.League, error)
	GetLeaguesByStatus(ctx context.Context, status models.LeagueStatus) ([]models.League, error)
	InTx(ctx context.Context, fn func(tx Txn) error) error
}

// App handles league lifecycle business logic. It is the only writer of
// league and participant state.
type App struct {
	repo      LeaguesRepository
	publisher events.Publisher
	metrics   metrics.Collector
	clock     clockwork.Clock
}

// NewApp creates a new leagues App
func NewApp(repo LeaguesRepository, publisher events.Publisher, collector metrics.Collector, clock clockwork.Clock) *App {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if collector == nil {
		collector = metrics.NoOp{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:      repo,
		publisher: publisher,
		metrics:   collector,
		clock:     clock,
	}
}

func (a *App) now() time.Time {
	return a.clock.Now().UTC()
}

// CreateLeague creates a league whose only participant is its creator
func (a *App) CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error) {
	if err := validateCreateLeagueRequest(req); err != nil {
		a.metrics.RecordLeagueOperation("create", err)
		return nil, err
	}

	now := a.now()
	ties := req.TiesCountAs
	if ties == "" {
		ties = models.TiesCountAsLose
	}
	settings := req.AdvancedSettings
	if settings.PlayerForgetToPick == "" {
		settings.PlayerForgetToPick = models.ForgotNone
	}
	lives := initialLives(req)
	if settings.NumberOfLives == 0 {
		settings.NumberOfLives = lives
	}

	league := &models.League{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Description:      req.Description,
		CreatedBy:        req.CreatedBy,
		MaxParticipants:  req.MaxParticipants,
		StartDate:        req.StartDate.Time,
		EndDate:          req.EndDate.Time,
		IsPrivate:        *req.IsPrivate,
		Password:         req.Password,
		InitialLives:     lives,
		TotalRounds:      req.TotalRounds,
		LeagueType:       req.LeagueType,
		AdvancedSettings: settings,
		AllowReEntry:     req.AllowReEntry,
		TiesCountAs:      ties,
		PendingRequests:  []string{},
		Status:           models.LeagueStatusActive,
		CurrentRound:     1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	league.AddParticipant(models.NewParticipant(req.CreatedBy, lives, now))

	if err := a.repo.CreateLeague(ctx, league); err != nil {
		err = persistence("Error creating league", err)
		a.metrics.RecordLeagueOperation("create", err)
		return nil, err
	}
	a.metrics.RecordLeagueOperation("create", nil)

	log.Info().
		Str("league_id", league.ID).
		Str("created_by", league.CreatedBy).
		Int("max_participants", league.MaxParticipants).
		Int("initial_lives", league.InitialLives).
		Msg("created league")
	return league, nil
}

// GetLeague retrieves a league by ID
func (a *App) GetLeague(ctx context.Context, id string) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, id)
	if err != nil {
		return nil, persistence("Error fetching league", err)
	}
	return league, nil
}

// GetLeaguesByUserId retrieves the leagues userID created
func (a *App) GetLeaguesByUserId(ctx context.Context, userID string) ([]models.League, error) {
	if userID == "" {
		return nil, apperrors.Validation("User id is required")
	}
	leagues, err := a.repo.GetLeaguesByCreator(ctx, userID)
	if err != nil {
		return nil, persistence("Error fetching leagues", err)
	}
	return leagues, nil
}

// GetLeaguesByParticipantId retrieves the leagues userID plays in or asked to join
func (a *App) GetLeaguesByParticipantId(ctx context.Context, userID string) ([]models.League, error) {
	if userID == "" {
		return nil, apperrors.Validation("Participant id is required")
	}
	leagues, err := a.repo.GetLeaguesByMember(ctx, userID)
	if err != nil {
		return nil, persistence("Error fetching leagues", err)
	}
	return leagues, nil
}

// GetActiveLeagues retrieves every active league
func (a *App) GetActiveLeagues(ctx context.Context) ([]models.League, error) {
	leagues, err := a.repo.GetLeaguesByStatus(ctx, models.LeagueStatusActive)
	if err != nil {
		return nil, persistence("Error fetching leagues", err)
	}
	return leagues, nil
}

// JoinLeague files a join request for userID
func (a *App) JoinLeague(ctx context.Context, leagueID, userID string) error {
	if leagueID == "" || userID == "" {
		return apperrors.Validation("League id and user id are required")
	}

	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(leagueID)
		if err != nil {
			return err
		}
		if err := firstFailure(joinRules(league, userID)...); err != nil {
			return err
		}
		league.AddPending(userID)
		league.UpdatedAt = a.now()
		return tx.SaveLeague(league)
	})
	a.metrics.RecordLeagueOperation("join", err)
	if err != nil {
		return persistence("Error joining league", err)
	}

	log.Info().Str("league_id", leagueID).Str("user_id", userID).Msg("join request filed")
	events.Emit(ctx, a.publisher, events.TypeJoinRequested, leagueID, a.now(), events.MembershipPayload{
		LeagueID: leagueID, UserID: userID, OccurredAt: a.now(),
	})
	return nil
}

// AcceptJoinRequest moves userID from the pending requests to the participants
func (a *App) AcceptJoinRequest(ctx context.Context, leagueID, userID, actingUserID string) (*models.League, error) {
	var accepted *models.League
	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(leagueID)
		if err != nil {
			return err
		}
		if err := firstFailure(acceptRules(league, userID, actingUserID)...); err != nil {
			return err
		}

		now := a.now()
		participant := models.NewParticipant(userID, league.InitialLives, now)
		league.RemovePending(userID)
		league.AddParticipant(participant)
		league.UpdatedAt = now

		if err := tx.SaveLeague(league); err != nil {
			return err
		}
		if err := tx.SaveMembership(league, participant); err != nil {
			return err
		}
		accepted = league
		return nil
	})
	a.metrics.RecordLeagueOperation("accept", err)
	if err != nil {
		return nil, persistence("Error accepting join request", err)
	}

	log.Info().
		Str("league_id", leagueID).
		Str("user_id", userID).
		Int("participants", len(accepted.Participants)).
		Msg("join request accepted")
	events.Emit(ctx, a.publisher, events.TypeJoinAccepted, leagueID, a.now(), events.MembershipPayload{
		LeagueID: leagueID, UserID: userID, ActorID: actingUserID, OccurredAt: a.now(),
	})
	return accepted, nil
}

// DenyJoinRequest drops userID's pending request
func (a *App) DenyJoinRequest(ctx context.Context, leagueID, userID, actingUserID string) (*models.League, error) {
	var denied *models.League
	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(leagueID)
		if err != nil {
			return err
		}
		if err := firstFailure(denyRules(league, userID, actingUserID)...); err != nil {
			return err
		}
		league.RemovePending(userID)
		league.UpdatedAt = a.now()
		denied = league
		return tx.SaveLeague(league)
	})
	a.metrics.RecordLeagueOperation("deny", err)
	if err != nil {
		return nil, persistence("Error denying join request", err)
	}

	log.Info().Str("league_id", leagueID).Str("user_id", userID).Msg("join request denied")
	events.Emit(ctx, a.publisher, events.TypeJoinDenied, leagueID, a.now(), events.MembershipPayload{
		LeagueID: leagueID, UserID: userID, ActorID: actingUserID, OccurredAt: a.now(),
	})
	return denied, nil
}

// UpdateLeagueStatus changes the league status on behalf of its creator
func (a *App) UpdateLeagueStatus(ctx context.Context, leagueID, actingUserID string, status models.LeagueStatus) (*models.League, error) {
	var (
		updated *models.League
		from    models.LeagueStatus
	)
	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(leagueID)
		if err != nil {
			return err
		}
		from = league.Status
		err = firstFailure(
			fail(func() bool { return actingUserID != league.CreatedBy },
				apperrors.Because(apperrors.ErrNotAuthorized, "Only the league creator can change its status")),
			fail(func() bool { return !canTransition(league.Status, status) },
				apperrors.Validation("League cannot move from "+string(league.Status)+" to "+string(status))),
		)
		if err != nil {
			return err
		}
		league.Status = status
		league.UpdatedAt = a.now()
		updated = league
		return tx.SaveLeague(league)
	})
	a.metrics.RecordLeagueOperation("status", err)
	if err != nil {
		return nil, persistence("Error updating league status", err)
	}

	log.Info().Str("league_id", leagueID).Str("from", string(from)).Str("to", string(status)).Msg("league status changed")
	events.Emit(ctx, a.publisher, events.TypeLeagueStatusChanged, leagueID, a.now(), events.StatusPayload{
		LeagueID: leagueID, From: string(from), To: string(status), ActorID: actingUserID, At: a.now(),
	})
	return updated, nil
}

// UpdateParticipantLives removes livesLost lives from userID. Lives clamp at
// zero and the participant is eliminated on the transition.
func (a *App) UpdateParticipantLives(ctx context.Context, leagueID, userID string, livesLost int) (*models.Participant, error) {
	if livesLost < 0 {
		return nil, apperrors.Validation("Lives lost cannot be negative")
	}

	var (
		updated    models.Participant
		lost       int
		eliminated bool
	)
	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(leagueID)
		if err != nil {
			return err
		}
		p, ok := league.Participant(userID)
		if !ok {
			return apperrors.ErrParticipantMissing
		}
		lost, eliminated = a.loseLives(league, p, livesLost)
		updated = *p
		if err := tx.SaveLeague(league); err != nil {
			return err
		}
		return tx.SaveMembership(league, *p)
	})
	a.metrics.RecordLeagueOperation("update_lives", err)
	if err != nil {
		return nil, persistence("Error updating participant lives", err)
	}

	a.afterLifeLoss(ctx, leagueID, userID, "", lost, eliminated, updated)
	return &updated, nil
}

// SubmitPrediction records a prediction for an active participant of an
// active league. User picks stamp the participant's last prediction date.
func (a *App) SubmitPrediction(ctx context.Context, pred *models.Prediction) error {
	err := a.repo.InTx(ctx, func(tx Txn) error {
		league, err := tx.League(pred.LeagueID)
		if err != nil {
			return err
		}
		if league.Status != models.LeagueStatusActive {
			return apperrors.Validation("League is not active")
		}
		p, ok := league.Participant(pred.UserID)
		if !ok {
			return apperrors.ErrParticipantMissing
		}
		if !p.IsActive() {
			return apperrors.Validation("Participant has been eliminated")
		}
		if err := tx.CreatePrediction(pred); err != nil {
			return err
		}
		if pred.Source != models.SourceUser {
			return nil
		}
		stamp := pred.Timestamp
		p.LastPredictionDate = &stamp
		league.UpdatedAt = a.now()
		return tx.SaveLeague(league)
	})
	if errors.Is(err, docstore.ErrAlreadyExists) {
		err = apperrors.ErrPredictionExists
	}
	a.metrics.RecordLeagueOperation("predict", err)
	if err != nil {
		return persistence("Error saving prediction", err)
	}
	return nil
}

// SettlePrediction applies a verdict to a pending prediction. It is a no-op
// for predictions that were already settled, which makes reprocessing a
// matchday safe.
func (a *App) SettlePrediction(ctx context.Context, s Settlement) (SettleResult, error) {
	switch s.Status {
	case models.PredictionCorrect, models.PredictionIncorrect, models.PredictionPush:
	default:
		return SettleResult{}, apperrors.Validation("Settlement status must be correct, incorrect or push")
	}

	var (
		result  SettleResult
		updated models.Participant
		lg      string
		user    string
	)
	err := a.repo.InTx(ctx, func(tx Txn) error {
		result = SettleResult{}
		pred, err := tx.Prediction(s.PredictionID)
		if err != nil {
			return err
		}
		if pred.Status != models.PredictionPending {
			result = SettleResult{AlreadySettled: true, Status: pred.Status}
			return nil
		}
		league, err := tx.League(pred.LeagueID)
		if err != nil {
			return err
		}
		p, ok := league.Participant(pred.UserID)
		if !ok {
			return apperrors.ErrParticipantMissing
		}

		now := a.now()
		p.TotalPredictions++
		switch s.Status {
		case models.PredictionCorrect:
			p.CorrectPredictions++
			pred.IsCorrect = true
		case models.PredictionIncorrect:
			result.LivesLost, result.Eliminated = a.loseLives(league, p, 1)
		}
		pred.Status = s.Status
		pred.MatchID = s.MatchID
		pred.ResolvedAt = &now
		result.Status = s.Status
		updated, lg, user = *p, league.ID, p.UserID

		if err := tx.SavePrediction(pred); err != nil {
			return err
		}
		if err := tx.SaveLeague(league); err != nil {
			return err
		}
		return tx.SaveMembership(league, *p)
	})
	if err != nil {
		return SettleResult{}, persistence("Error settling prediction", err)
	}
	if result.AlreadySettled {
		return result, nil
	}

	a.metrics.RecordPredictionSettled(string(result.Status))
	a.afterLifeLoss(ctx, lg, user, s.PredictionID, result.LivesLost, result.Eliminated, updated)
	return result, nil
}

// loseLives is the single place participant lives change. It returns the
// lives actually removed and whether p was eliminated by this call.
func (a *App) loseLives(league *models.League, p *models.Participant, n int) (int, bool) {
	now := a.now()
	before := p.Lives()
	eliminated := p.LoseLives(n, now)
	league.UpdatedAt = now
	return before - p.Lives(), eliminated
}

func (a *App) afterLifeLoss(ctx context.Context, leagueID, userID, predictionID string, livesLost int, eliminated bool, p models.Participant) {
	if livesLost > 0 {
		a.metrics.RecordLivesLost(livesLost)
		log.Info().
			Str("league_id", leagueID).
			Str("user_id", userID).
			Int("lives_lost", livesLost).
			Int("lives", p.Lives()).
			Msg("participant lost lives")
	}
	if !eliminated {
		return
	}
	a.metrics.RecordElimination()
	at := a.now()
	if e := p.EliminatedAt(); e != nil {
		at = *e
	}
	log.Info().Str("league_id", leagueID).Str("user_id", userID).Time("eliminated_at", at).Msg("participant eliminated")
	events.Emit(ctx, a.publisher, events.TypeParticipantEliminated, leagueID, at, events.EliminationPayload{
		LeagueID: leagueID, UserID: userID, PredictionID: predictionID, EliminatedAt: at,
	})
}

// persistence passes domain errors through and wraps everything else.
func persistence(message string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Persistence(message, err)
}
