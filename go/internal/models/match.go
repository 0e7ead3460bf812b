package models

import "time"

// Match statuses reported by the feed
const (
	MatchScheduled = "SCHEDULED"
	MatchTimed     = "TIMED"
	MatchInPlay    = "IN_PLAY"
	MatchPaused    = "PAUSED"
	MatchFinished  = "FINISHED"
	MatchPostponed = "POSTPONED"
	MatchCancelled = "CANCELLED"
)

// Winner values reported by the feed
const (
	WinnerHome = "HOME_TEAM"
	WinnerAway = "AWAY_TEAM"
	WinnerDraw = "DRAW"
)

// TeamRef identifies a side of a fixture
type TeamRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

// Score is the full-time result
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Match is a mirrored fixture
type Match struct {
	ID       int       `json:"id"`
	Matchday int       `json:"matchday"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam TeamRef   `json:"homeTeam"`
	AwayTeam TeamRef   `json:"awayTeam"`
	Score    Score     `json:"score"`
	Winner   string    `json:"winner,omitempty"`
}

// Finished reports whether the fixture has a final result.
func (m Match) Finished() bool {
	return m.Status == MatchFinished
}

// Involves reports whether teamID plays in m.
func (m Match) Involves(teamID int) bool {
	return m.HomeTeam.ID == teamID || m.AwayTeam.ID == teamID
}

// Matchday is one round of fixtures with the feed's reported date window
type Matchday struct {
	Number    int     `json:"number"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Matches   []Match `json:"matches"`
}

// FirstMatch returns the earliest kickoff, false when there are no fixtures.
func (md Matchday) FirstMatch() (time.Time, bool) {
	var first time.Time
	for _, m := range md.Matches {
		if first.IsZero() || m.UTCDate.Before(first) {
			first = m.UTCDate
		}
	}
	return first, !first.IsZero()
}

// Finished reports whether every fixture of the matchday is done.
// Postponed and cancelled fixtures do not hold the matchday open.
func (md Matchday) Finished() bool {
	if len(md.Matches) == 0 {
		return false
	}
	for _, m := range md.Matches {
		switch m.Status {
		case MatchFinished, MatchPostponed, MatchCancelled:
		default:
			return false
		}
	}
	return true
}

// MatchFor returns the fixture teamID plays in.
func (md Matchday) MatchFor(teamID int) (Match, bool) {
	for _, m := range md.Matches {
		if m.Involves(teamID) {
			return m, true
		}
	}
	return Match{}, false
}

// Teams lists every side playing in the matchday.
func (md Matchday) Teams() []TeamRef {
	teams := make([]TeamRef, 0, len(md.Matches)*2)
	for _, m := range md.Matches {
		teams = append(teams, m.HomeTeam, m.AwayTeam)
	}
	return teams
}
