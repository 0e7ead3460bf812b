package footballdata

import (
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
)

// Wire types of the football-data.org v4 API

type Season struct {
	ID              int    `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday int    `json:"currentMatchday"`
}

type CompetitionResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	CurrentSeason Season `json:"currentSeason"`
}

type ResultSet struct {
	Count  int    `json:"count"`
	First  string `json:"first"`
	Last   string `json:"last"`
	Played int    `json:"played"`
}

type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type FullTime struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Winner   string   `json:"winner"`
	FullTime FullTime `json:"fullTime"`
}

type Match struct {
	ID       int       `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	Matchday int       `json:"matchday"`
	HomeTeam Team      `json:"homeTeam"`
	AwayTeam Team      `json:"awayTeam"`
	Score    Score     `json:"score"`
}

type MatchesResponse struct {
	ResultSet ResultSet `json:"resultSet"`
	Matches   []Match   `json:"matches"`
}

type TeamsResponse struct {
	Count int    `json:"count"`
	Teams []Team `json:"teams"`
}

func (t Team) ref() models.TeamRef {
	return models.TeamRef{ID: t.ID, Name: t.Name, ShortName: t.ShortName, Crest: t.Crest}
}

func (t Team) toModel() models.Team {
	return models.Team{ID: t.ID, Name: t.Name, ShortName: t.ShortName, TLA: t.TLA, Crest: t.Crest}
}

func (m Match) toModel() models.Match {
	return models.Match{
		ID:       m.ID,
		Matchday: m.Matchday,
		UTCDate:  m.UTCDate.UTC(),
		Status:   m.Status,
		HomeTeam: m.HomeTeam.ref(),
		AwayTeam: m.AwayTeam.ref(),
		Score:    models.Score{Home: m.Score.FullTime.Home, Away: m.Score.FullTime.Away},
		Winner:   m.Score.Winner,
	}
}
