package leagues

import (
	"fmt"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/models"
)

const defaultLives = 3

// rule pairs a violation check with the error it surfaces.
type rule struct {
	violated func() bool
	err      func() error
}

func fail(violated func() bool, err error) rule {
	return rule{violated: violated, err: func() error { return err }}
}

// firstFailure evaluates rules in order and returns the first violation.
// Order is part of the contract: callers rely on which error surfaces first.
func firstFailure(rules ...rule) error {
	for _, r := range rules {
		if r.violated() {
			return r.err()
		}
	}
	return nil
}

func validateCreateLeagueRequest(req CreateLeagueRequest) error {
	return firstFailure(
		fail(func() bool { return req.CreatedBy == "" }, apperrors.New(apperrors.CodeUnauthenticated, "User not authenticated")),
		fail(func() bool { return req.Name == "" }, apperrors.Validation("League name is required")),
		fail(func() bool { return req.MaxParticipants < 2 }, apperrors.Validation("Maximum participants must be at least 2")),
		fail(func() bool { return req.StartDate == nil || req.StartDate.IsZero() }, apperrors.Validation("Start date is required")),
		fail(func() bool { return req.EndDate == nil || req.EndDate.IsZero() }, apperrors.Validation("End date is required")),
		fail(func() bool { return !req.StartDate.Before(req.EndDate.Time) }, apperrors.Validation("End date must be after start date")),
		fail(func() bool { return req.IsPrivate == nil }, apperrors.Validation("isPrivate must be a boolean")),
		fail(func() bool { return *req.IsPrivate && req.Password == "" }, apperrors.Validation("Password is required for private leagues")),
		fail(func() bool { return req.InitialLives < 0 }, apperrors.Validation("Initial lives cannot be negative")),
		fail(func() bool { return req.TotalRounds < 0 }, apperrors.Validation("Total rounds cannot be negative")),
		fail(func() bool { return !validTiePolicy(req.TiesCountAs) }, apperrors.Validation("tiesCountAs must be one of win, lose, draw")),
		fail(func() bool { return !validForgotPolicy(req.AdvancedSettings.PlayerForgetToPick) },
			apperrors.Validation("playerForgetToPick must be one of none, lose_life, random_pick")),
	)
}

func validTiePolicy(p models.TiePolicy) bool {
	switch p {
	case "", models.TiesCountAsWin, models.TiesCountAsLose, models.TiesCountAsDraw:
		return true
	}
	return false
}

func validForgotPolicy(p models.ForgotPolicy) bool {
	switch p {
	case "", models.ForgotNone, models.ForgotLoseLife, models.ForgotRandomPick:
		return true
	}
	return false
}

// initialLives resolves the starting lives from the request.
func initialLives(req CreateLeagueRequest) int {
	switch {
	case req.InitialLives > 0:
		return req.InitialLives
	case req.AdvancedSettings.NumberOfLives > 0:
		return req.AdvancedSettings.NumberOfLives
	default:
		return defaultLives
	}
}

// acceptRules checks authorization first so an unauthorized
// caller never learns whether a request exists.
func acceptRules(l *models.League, userID, actingUserID string) []rule {
	return []rule{
		fail(func() bool { return actingUserID != l.CreatedBy }, apperrors.ErrNotAuthorized),
		fail(func() bool { return !l.IsPending(userID) }, apperrors.ErrNoSuchRequest),
		fail(func() bool { return l.IsParticipant(userID) }, apperrors.ErrAlreadyParticipant),
		{
			violated: l.IsFull,
			err: func() error {
				return apperrors.Because(apperrors.ErrLeagueFull,
					fmt.Sprintf("League has reached maximum capacity of %d participants", l.MaxParticipants))
			},
		},
	}
}

func denyRules(l *models.League, userID, actingUserID string) []rule {
	return []rule{
		fail(func() bool { return actingUserID != l.CreatedBy }, apperrors.ErrNotAuthorized),
		fail(func() bool { return !l.IsPending(userID) }, apperrors.ErrNoSuchRequest),
	}
}

func joinRules(l *models.League, userID string) []rule {
	return []rule{
		fail(func() bool { return l.IsParticipant(userID) }, apperrors.ErrAlreadyParticipant),
		fail(func() bool { return l.IsPending(userID) }, apperrors.ErrDuplicateRequest),
	}
}

// statusTransitions lists the allowed league status changes.
var statusTransitions = map[models.LeagueStatus][]models.LeagueStatus{
	models.LeagueStatusActive:   {models.LeagueStatusCompleted, models.LeagueStatusInactive},
	models.LeagueStatusInactive: {models.LeagueStatusActive},
}

func canTransition(from, to models.LeagueStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
