package leagues

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
)

// CreateLeagueRequest represents the data needed to create a new league
type CreateLeagueRequest struct {
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	MaxParticipants  int                     `json:"maxParticipants"`
	StartDate        *Date                   `json:"startDate"`
	EndDate          *Date                   `json:"endDate"`
	IsPrivate        *bool                   `json:"isPrivate"`
	Password         string                  `json:"password"`
	CreatedBy        string                  `json:"-"`
	InitialLives     int                     `json:"initialLives"`
	TotalRounds      int                     `json:"totalRounds"`
	LeagueType       string                  `json:"leagueType"`
	AdvancedSettings models.AdvancedSettings `json:"advancedSettings"`
	AllowReEntry     bool                    `json:"allowReEntry"`
	TiesCountAs      models.TiePolicy        `json:"tiesCountAs"`
}

// JoinLeagueRequest is the body of POST /leagues/join
type JoinLeagueRequest struct {
	LeagueID string `json:"leagueId"`
}

// UpdateStatusRequest is the body of PATCH /leagues/{leagueId}/status
type UpdateStatusRequest struct {
	Status models.LeagueStatus `json:"status"`
}

// Settlement is the outcome the life adjustment processor decided for a prediction
type Settlement struct {
	PredictionID string
	Status       models.PredictionStatus
	MatchID      int
}

// SettleResult reports what settling a prediction changed
type SettleResult struct {
	AlreadySettled bool
	Status         models.PredictionStatus
	LivesLost      int
	Eliminated     bool
}

// Date accepts either an RFC 3339 timestamp or a plain YYYY-MM-DD date.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}
