package models

import (
	"fmt"
	"time"
)

// Outcome is what the user expects of the picked team
type Outcome string

const (
	OutcomeDefault Outcome = "DEFAULT"
	OutcomeWin     Outcome = "WIN"
	OutcomeLose    Outcome = "LOSE"
	OutcomeDraw    Outcome = "DRAW"
	OutcomeMissed  Outcome = "MISSED"
)

// PredictionStatus tracks settlement. Only pending predictions can change.
type PredictionStatus string

const (
	PredictionPending   PredictionStatus = "pending"
	PredictionCorrect   PredictionStatus = "correct"
	PredictionIncorrect PredictionStatus = "incorrect"
	PredictionPush      PredictionStatus = "push"
)

// PredictionSource tells user picks apart from picks made on their behalf
type PredictionSource string

const (
	SourceUser   PredictionSource = "user"
	SourceAuto   PredictionSource = "auto"
	SourceMissed PredictionSource = "missed"
)

// Prediction is one pick for one (league, user, matchday)
type Prediction struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	LeagueID          string           `json:"leagueId"`
	Matchday          int              `json:"matchday"`
	TeamID            int              `json:"teamId"`
	TeamName          string           `json:"teamName,omitempty"`
	Username          string           `json:"username,omitempty"`
	PredictionOutcome Outcome          `json:"predictionOutcome"`
	Source            PredictionSource `json:"source"`
	Status            PredictionStatus `json:"status"`
	IsCorrect         bool             `json:"isCorrect"`
	MatchID           int              `json:"matchId,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
	ResolvedAt        *time.Time       `json:"resolvedAt,omitempty"`
}

// PredictionID is the deterministic id of a (league, user, matchday) pick.
func PredictionID(leagueID, userID string, matchday int) string {
	return fmt.Sprintf("%s_%s_%d", leagueID, userID, matchday)
}

// Expected returns the result the pick needs, with DEFAULT read as WIN.
func (p Prediction) Expected() Outcome {
	if p.PredictionOutcome == "" || p.PredictionOutcome == OutcomeDefault {
		return OutcomeWin
	}
	return p.PredictionOutcome
}
