package events

import (
	"time"
)

// Event types published on league.events.<type>
const (
	TypeJoinRequested         = "join_requested"
	TypeJoinAccepted          = "join_accepted"
	TypeJoinDenied            = "join_denied"
	TypeParticipantEliminated = "participant_eliminated"
	TypeLeagueStatusChanged   = "league_status_changed"
	TypeReminderArmed         = "reminder_armed"
	TypeReminderFired         = "reminder_fired"
)

// MembershipPayload is the payload for join request events
type MembershipPayload struct {
	LeagueID   string    `json:"league_id"`
	UserID     string    `json:"user_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EliminationPayload is the payload for a ParticipantEliminated event
type EliminationPayload struct {
	LeagueID     string    `json:"league_id"`
	UserID       string    `json:"user_id"`
	PredictionID string    `json:"prediction_id,omitempty"`
	EliminatedAt time.Time `json:"eliminated_at"`
}

// StatusPayload is the payload for a LeagueStatusChanged event
type StatusPayload struct {
	LeagueID string    `json:"league_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	ActorID  string    `json:"actor_id"`
	At       time.Time `json:"at"`
}

// ReminderPayload is the payload for reminder events
type ReminderPayload struct {
	Matchday   int       `json:"matchday"`
	FireAt     time.Time `json:"fire_at"`
	Recipients int       `json:"recipients"`
	Delivered  int       `json:"delivered,omitempty"`
}
