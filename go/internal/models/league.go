package models

import (
	"slices"
	"time"
)

// LeagueStatus is the lifecycle state of a league
type LeagueStatus string

const (
	LeagueStatusActive    LeagueStatus = "active"
	LeagueStatusInactive  LeagueStatus = "inactive"
	LeagueStatusCompleted LeagueStatus = "completed"
)

// TiePolicy decides how a drawn fixture scores a win/lose pick
type TiePolicy string

const (
	TiesCountAsWin  TiePolicy = "win"
	TiesCountAsLose TiePolicy = "lose"
	TiesCountAsDraw TiePolicy = "draw"
)

// ForgotPolicy decides what happens to a participant who skipped a matchday
type ForgotPolicy string

const (
	ForgotNone       ForgotPolicy = "none"
	ForgotLoseLife   ForgotPolicy = "lose_life"
	ForgotRandomPick ForgotPolicy = "random_pick"
)

// AdvancedSettings holds optional game rules
type AdvancedSettings struct {
	NumberOfLives      int          `json:"numberOfLives,omitempty"`
	PlayerForgetToPick ForgotPolicy `json:"playerForgetToPick,omitempty"`
}

// League is a survivor competition with its embedded membership
type League struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	CreatedBy        string           `json:"createdBy"`
	MaxParticipants  int              `json:"maxParticipants"`
	StartDate        time.Time        `json:"startDate"`
	EndDate          time.Time        `json:"endDate"`
	IsPrivate        bool             `json:"isPrivate"`
	Password         string           `json:"password,omitempty"`
	InitialLives     int              `json:"initialLives"`
	TotalRounds      int              `json:"totalRounds"`
	LeagueType       string           `json:"leagueType,omitempty"`
	AdvancedSettings AdvancedSettings `json:"advancedSettings"`
	AllowReEntry     bool             `json:"allowReEntry"`
	TiesCountAs      TiePolicy        `json:"tiesCountAs"`
	Participants     []Participant    `json:"participants"`
	MemberIDs        []string         `json:"memberIds"`
	PendingRequests  []string         `json:"pendingRequests"`
	Status           LeagueStatus     `json:"status"`
	CurrentRound     int              `json:"currentRound"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Participant returns a pointer into Participants for userID.
func (l *League) Participant(userID string) (*Participant, bool) {
	for i := range l.Participants {
		if l.Participants[i].UserID == userID {
			return &l.Participants[i], true
		}
	}
	return nil, false
}

// IsParticipant reports whether userID is a member.
func (l *League) IsParticipant(userID string) bool {
	_, ok := l.Participant(userID)
	return ok
}

// IsPending reports whether userID has an open join request.
func (l *League) IsPending(userID string) bool {
	return slices.Contains(l.PendingRequests, userID)
}

// IsFull reports whether the league reached maxParticipants.
func (l *League) IsFull() bool {
	return len(l.Participants) >= l.MaxParticipants
}

// AddPending appends userID to the pending requests.
func (l *League) AddPending(userID string) {
	l.PendingRequests = append(l.PendingRequests, userID)
}

// RemovePending drops userID from the pending requests.
func (l *League) RemovePending(userID string) {
	l.PendingRequests = slices.DeleteFunc(l.PendingRequests, func(id string) bool { return id == userID })
}

// AddParticipant appends p and keeps MemberIDs in step.
func (l *League) AddParticipant(p Participant) {
	l.Participants = append(l.Participants, p)
	l.MemberIDs = append(l.MemberIDs, p.UserID)
}

// ActiveParticipants returns the members still in the game.
func (l *League) ActiveParticipants() []Participant {
	var out []Participant
	for _, p := range l.Participants {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// Redacted returns a copy safe to hand to clients.
func (l League) Redacted() League {
	l.Password = ""
	return l
}

// Membership mirrors a participant under users/{uid}/leagues/{leagueId}
type Membership struct {
	LeagueID     string     `json:"leagueId"`
	LeagueName   string     `json:"leagueName"`
	Lives        int        `json:"lives"`
	IsActive     bool       `json:"isActive"`
	EliminatedAt *time.Time `json:"eliminatedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// MembershipOf builds the mirror record for p in l.
func MembershipOf(l *League, p Participant, at time.Time) Membership {
	return Membership{
		LeagueID:     l.ID,
		LeagueName:   l.Name,
		Lives:        p.Lives(),
		IsActive:     p.IsActive(),
		EliminatedAt: p.EliminatedAt(),
		UpdatedAt:    at,
	}
}
