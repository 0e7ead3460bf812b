package adjustment

import (
	"testing"
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/stretchr/testify/assert"
)

const (
	arsenal = 57
	leeds   = 341
	city    = 65
	united  = 66
)

func goals(n int) *int { return &n }

func match(id, home, away int, status, winner string) models.Match {
	return models.Match{
		ID:       id,
		Matchday: 4,
		UTCDate:  time.Date(2025, 9, 13, 11, 30, 0, 0, time.UTC),
		Status:   status,
		HomeTeam: models.TeamRef{ID: home},
		AwayTeam: models.TeamRef{ID: away},
		Winner:   winner,
	}
}

func TestEvaluate(t *testing.T) {
	finished := models.Matchday{Number: 4, Matches: []models.Match{
		match(1, arsenal, leeds, models.MatchFinished, models.WinnerHome),
		match(2, city, united, models.MatchFinished, models.WinnerDraw),
	}}
	inPlay := models.Matchday{Number: 4, Matches: []models.Match{
		match(1, arsenal, leeds, models.MatchFinished, models.WinnerHome),
		match(2, city, united, models.MatchInPlay, ""),
	}}
	postponed := models.Matchday{Number: 4, Matches: []models.Match{
		match(1, arsenal, leeds, models.MatchFinished, models.WinnerHome),
		match(2, city, united, models.MatchPostponed, ""),
	}}

	tests := []struct {
		name    string
		team    int
		outcome models.Outcome
		md      models.Matchday
		ties    models.TiePolicy
		want    models.PredictionStatus
		matchID int
	}{
		{"home win picked", arsenal, models.OutcomeDefault, finished, "", models.PredictionCorrect, 1},
		{"away loss picked", leeds, models.OutcomeDefault, finished, "", models.PredictionIncorrect, 1},
		{"lose expectation met", leeds, models.OutcomeLose, finished, "", models.PredictionCorrect, 1},
		{"win expectation on loser", leeds, models.OutcomeWin, finished, "", models.PredictionIncorrect, 1},
		{"draw expected", city, models.OutcomeDraw, finished, "", models.PredictionCorrect, 2},
		{"draw expected but won", arsenal, models.OutcomeDraw, finished, "", models.PredictionIncorrect, 1},
		{"tie counts as lose by default", city, models.OutcomeDefault, finished, "", models.PredictionIncorrect, 2},
		{"tie counts as lose", united, models.OutcomeWin, finished, models.TiesCountAsLose, models.PredictionIncorrect, 2},
		{"tie counts as win", united, models.OutcomeWin, finished, models.TiesCountAsWin, models.PredictionCorrect, 2},
		{"tie counts as draw", city, models.OutcomeLose, finished, models.TiesCountAsDraw, models.PredictionPush, 2},
		{"fixture still playing", city, models.OutcomeDefault, inPlay, "", models.PredictionPending, 2},
		{"finished fixture in open matchday", arsenal, models.OutcomeDefault, inPlay, "", models.PredictionCorrect, 1},
		{"team not playing yet", 999, models.OutcomeDefault, inPlay, "", models.PredictionPending, 0},
		{"team not playing", 999, models.OutcomeDefault, finished, "", models.PredictionPush, 0},
		{"postponed fixture", city, models.OutcomeDefault, postponed, "", models.PredictionPush, 2},
		{"missed pick", 0, models.OutcomeMissed, inPlay, "", models.PredictionIncorrect, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := models.Prediction{TeamID: tt.team, PredictionOutcome: tt.outcome}
			v := Evaluate(pred, tt.md, tt.ties)
			assert.Equal(t, tt.want, v.Status)
			assert.Equal(t, tt.matchID, v.MatchID)
		})
	}
}

func TestEvaluateFallsBackToScore(t *testing.T) {
	m := match(1, arsenal, leeds, models.MatchFinished, "")
	m.Score = models.Score{Home: goals(0), Away: goals(1)}
	md := models.Matchday{Number: 4, Matches: []models.Match{m}}

	assert.Equal(t, models.PredictionCorrect, Evaluate(models.Prediction{TeamID: leeds}, md, "").Status)
	assert.Equal(t, models.PredictionIncorrect, Evaluate(models.Prediction{TeamID: arsenal}, md, "").Status)

	md.Matches[0].Score = models.Score{}
	assert.Equal(t, models.PredictionPending, Evaluate(models.Prediction{TeamID: arsenal}, md, "").Status)
}
