// Package adjustment settles predictions against matchday results and turns
// wrong picks into lost lives.
package adjustment

import "github.com/mcdev12/survivor/go/internal/models"

// Verdict is the outcome of checking one prediction against a matchday
type Verdict struct {
	Status  models.PredictionStatus
	MatchID int
}

// Settled reports whether the verdict is final.
func (v Verdict) Settled() bool {
	return v.Status != models.PredictionPending
}

// Evaluate decides a prediction against the fixtures of its matchday.
//
// The team's fixture must be finished for a verdict. A team that does not
// play, or whose fixture was postponed or cancelled, pushes once the rest of
// the matchday is done. A draw against a WIN or LOSE pick scores according
// to ties.
func Evaluate(pred models.Prediction, md models.Matchday, ties models.TiePolicy) Verdict {
	expected := pred.Expected()
	if expected == models.OutcomeMissed {
		return Verdict{Status: models.PredictionIncorrect}
	}

	match, ok := md.MatchFor(pred.TeamID)
	if !ok {
		if md.Finished() {
			return Verdict{Status: models.PredictionPush}
		}
		return Verdict{Status: models.PredictionPending}
	}

	switch match.Status {
	case models.MatchPostponed, models.MatchCancelled:
		if md.Finished() {
			return Verdict{Status: models.PredictionPush, MatchID: match.ID}
		}
		return Verdict{Status: models.PredictionPending, MatchID: match.ID}
	case models.MatchFinished:
	default:
		return Verdict{Status: models.PredictionPending, MatchID: match.ID}
	}

	result, ok := teamResult(match, pred.TeamID)
	if !ok {
		return Verdict{Status: models.PredictionPending, MatchID: match.ID}
	}

	v := Verdict{MatchID: match.ID}
	switch {
	case result == expected:
		v.Status = models.PredictionCorrect
	case result == models.OutcomeDraw:
		v.Status = tieStatus(ties)
	default:
		v.Status = models.PredictionIncorrect
	}
	return v
}

func tieStatus(ties models.TiePolicy) models.PredictionStatus {
	switch ties {
	case models.TiesCountAsWin:
		return models.PredictionCorrect
	case models.TiesCountAsDraw:
		return models.PredictionPush
	default:
		return models.PredictionIncorrect
	}
}

// teamResult returns WIN, LOSE or DRAW from teamID's point of view. The
// feed's winner field is preferred and the score is the fallback.
func teamResult(m models.Match, teamID int) (models.Outcome, bool) {
	winner := m.Winner
	if winner == "" && m.Score.Home != nil && m.Score.Away != nil {
		switch {
		case *m.Score.Home > *m.Score.Away:
			winner = models.WinnerHome
		case *m.Score.Home < *m.Score.Away:
			winner = models.WinnerAway
		default:
			winner = models.WinnerDraw
		}
	}

	home := m.HomeTeam.ID == teamID
	switch winner {
	case models.WinnerDraw:
		return models.OutcomeDraw, true
	case models.WinnerHome:
		if home {
			return models.OutcomeWin, true
		}
		return models.OutcomeLose, true
	case models.WinnerAway:
		if home {
			return models.OutcomeLose, true
		}
		return models.OutcomeWin, true
	default:
		return "", false
	}
}
