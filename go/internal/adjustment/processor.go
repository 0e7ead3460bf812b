package adjustment

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/leagues"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Leagues is the part of the leagues app the processor drives
type Leagues interface {
	GetLeague(ctx context.Context, id string) (*models.League, error)
	GetActiveLeagues(ctx context.Context) ([]models.League, error)
	SubmitPrediction(ctx context.Context, pred *models.Prediction) error
	SettlePrediction(ctx context.Context, s leagues.Settlement) (leagues.SettleResult, error)
}

// Predictions reads predictions by matchday
type Predictions interface {
	GetPendingByMatchday(ctx context.Context, matchday int) ([]models.Prediction, error)
	GetPredictionsByLeagueMatchday(ctx context.Context, leagueID string, matchday int) ([]models.Prediction, error)
}

// Summary reports what one pass over a matchday did
type Summary struct {
	Matchday   int `json:"matchday"`
	Evaluated  int `json:"evaluated"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Pushes     int `json:"pushes"`
	Pending    int `json:"pending"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	LivesLost  int `json:"livesLost"`
	Eliminated int `json:"eliminated"`
	Missed     int `json:"missed"`
	AutoPicked int `json:"autoPicked"`
}

// Processor reconciles predictions with results. Reprocessing a matchday is
// safe because only pending predictions are settled.
type Processor struct {
	leagues     Leagues
	predictions Predictions
	clock       clockwork.Clock
	pick        func(n int) int
}

// Option configures a Processor
type Option func(*Processor)

// WithPicker replaces the random team picker used by the random_pick policy.
func WithPicker(pick func(n int) int) Option {
	return func(p *Processor) { p.pick = pick }
}

// NewProcessor creates a new life adjustment processor
func NewProcessor(l Leagues, preds Predictions, clock clockwork.Clock, opts ...Option) *Processor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := &Processor{leagues: l, predictions: preds, clock: clock, pick: rand.IntN}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessMatchday settles every pending prediction of md. Once md is finished
// it first fills in picks for participants who forgot, per league policy.
func (p *Processor) ProcessMatchday(ctx context.Context, md models.Matchday) (Summary, error) {
	sum := Summary{Matchday: md.Number}

	if md.Finished() {
		if err := p.fillForgotten(ctx, md, &sum); err != nil {
			return sum, err
		}
	}

	pending, err := p.predictions.GetPendingByMatchday(ctx, md.Number)
	if err != nil {
		return sum, apperrors.Persistence("Error fetching pending predictions", err)
	}

	ties := make(map[string]models.TiePolicy)
	for _, pred := range pending {
		policy, ok := ties[pred.LeagueID]
		if !ok {
			league, err := p.leagues.GetLeague(ctx, pred.LeagueID)
			if err != nil {
				log.Error().Err(err).Str("league_id", pred.LeagueID).Msg("failed to load league for settlement")
				sum.Failed++
				continue
			}
			policy = league.TiesCountAs
			ties[pred.LeagueID] = policy
		}

		v := Evaluate(pred, md, policy)
		sum.Evaluated++
		if !v.Settled() {
			sum.Pending++
			continue
		}

		res, err := p.leagues.SettlePrediction(ctx, leagues.Settlement{PredictionID: pred.ID, Status: v.Status, MatchID: v.MatchID})
		if err != nil {
			log.Error().Err(err).Str("prediction_id", pred.ID).Msg("failed to settle prediction")
			sum.Failed++
			continue
		}
		if res.AlreadySettled {
			sum.Skipped++
			continue
		}
		switch res.Status {
		case models.PredictionCorrect:
			sum.Correct++
		case models.PredictionIncorrect:
			sum.Incorrect++
		case models.PredictionPush:
			sum.Pushes++
		}
		sum.LivesLost += res.LivesLost
		if res.Eliminated {
			sum.Eliminated++
		}
	}

	log.Info().
		Int("matchday", sum.Matchday).
		Int("evaluated", sum.Evaluated).
		Int("correct", sum.Correct).
		Int("incorrect", sum.Incorrect).
		Int("pushes", sum.Pushes).
		Int("pending", sum.Pending).
		Int("lives_lost", sum.LivesLost).
		Int("eliminated", sum.Eliminated).
		Int("failed", sum.Failed).
		Msg("processed matchday")
	return sum, nil
}

// fillForgotten creates the picks the forgot-to-pick policy calls for. The
// picks are created pending and settled by the normal pass. Only leagues and
// members that existed before the matchday's first kickoff are considered.
func (p *Processor) fillForgotten(ctx context.Context, md models.Matchday, sum *Summary) error {
	active, err := p.leagues.GetActiveLeagues(ctx)
	if err != nil {
		return apperrors.Persistence("Error fetching active leagues", err)
	}

	kickoff, ok := md.FirstMatch()
	if !ok {
		return nil
	}

	for _, league := range active {
		policy := league.AdvancedSettings.PlayerForgetToPick
		if policy != models.ForgotLoseLife && policy != models.ForgotRandomPick {
			continue
		}
		if !league.CreatedAt.Before(kickoff) || league.StartDate.After(kickoff) {
			continue
		}
		existing, err := p.predictions.GetPredictionsByLeagueMatchday(ctx, league.ID, md.Number)
		if err != nil {
			log.Error().Err(err).Str("league_id", league.ID).Msg("failed to load league predictions")
			continue
		}
		picked := make(map[string]bool, len(existing))
		for _, pred := range existing {
			picked[pred.UserID] = true
		}

		for _, participant := range league.ActiveParticipants() {
			// Members who joined after kickoff never had a pick to miss.
			if picked[participant.UserID] || !participant.JoinedAt.Before(kickoff) {
				continue
			}
			pred, ok := p.forgottenPick(league, participant, md, policy)
			if !ok {
				continue
			}
			err := p.leagues.SubmitPrediction(ctx, pred)
			switch {
			case errors.Is(err, apperrors.ErrPredictionExists):
				continue
			case err != nil:
				log.Error().Err(err).Str("league_id", league.ID).Str("user_id", participant.UserID).Msg("failed to record forgotten pick")
				continue
			}
			if pred.Source == models.SourceMissed {
				sum.Missed++
			} else {
				sum.AutoPicked++
			}
			log.Info().
				Str("league_id", league.ID).
				Str("user_id", participant.UserID).
				Str("policy", string(policy)).
				Int("matchday", md.Number).
				Msg("recorded pick for participant who forgot")
		}
	}
	return nil
}

func (p *Processor) forgottenPick(league models.League, participant models.Participant, md models.Matchday, policy models.ForgotPolicy) (*models.Prediction, bool) {
	pred := &models.Prediction{
		ID:        models.PredictionID(league.ID, participant.UserID, md.Number),
		UserID:    participant.UserID,
		LeagueID:  league.ID,
		Matchday:  md.Number,
		Status:    models.PredictionPending,
		Timestamp: p.clock.Now().UTC(),
	}
	switch policy {
	case models.ForgotLoseLife:
		pred.PredictionOutcome = models.OutcomeMissed
		pred.Source = models.SourceMissed
	case models.ForgotRandomPick:
		teams := md.Teams()
		if len(teams) == 0 {
			return nil, false
		}
		team := teams[p.pick(len(teams))]
		pred.TeamID = team.ID
		pred.TeamName = team.Name
		pred.PredictionOutcome = models.OutcomeDefault
		pred.Source = models.SourceAuto
	default:
		return nil, false
	}
	return pred, true
}
