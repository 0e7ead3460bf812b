package predictions

import "github.com/mcdev12/survivor/go/internal/models"

// MakePredictionRequest is the body of POST /makePredictions. The user is
// always the authenticated caller.
type MakePredictionRequest struct {
	UserID            string         `json:"-"`
	LeagueID          string         `json:"leagueId"`
	Matchday          int            `json:"matchday"`
	TeamID            int            `json:"teamId"`
	TeamName          string         `json:"teamName"`
	Username          string         `json:"username"`
	PredictionOutcome models.Outcome `json:"predictionOutcome"`
}

// Stats summarizes a user's settled and pending picks across leagues
type Stats struct {
	TotalPredictions   int     `json:"totalPredictions"`
	CorrectPredictions int     `json:"correctPredictions"`
	Accuracy           float64 `json:"accuracy"`
}
