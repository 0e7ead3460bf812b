package models

import (
	"encoding/json"
	"time"
)

// Standing is either Active or Eliminated. A participant is never both.
type Standing interface {
	standing()
}

// Active participants still hold at least one life.
type Active struct {
	Lives int
}

// Eliminated participants lost their last life at At.
type Eliminated struct {
	At time.Time
}

func (Active) standing()     {}
func (Eliminated) standing() {}

// Participant is a user's membership inside a league
type Participant struct {
	UserID             string
	JoinedAt           time.Time
	LastPredictionDate *time.Time
	TotalPredictions   int
	CorrectPredictions int

	standing Standing
}

// NewParticipant starts a member with lives. Non-positive lives start eliminated.
func NewParticipant(userID string, lives int, joinedAt time.Time) Participant {
	p := Participant{UserID: userID, JoinedAt: joinedAt}
	if lives > 0 {
		p.standing = Active{Lives: lives}
	} else {
		p.standing = Eliminated{At: joinedAt}
	}
	return p
}

// Standing returns the current tagged state.
func (p Participant) Standing() Standing {
	if p.standing == nil {
		return Eliminated{}
	}
	return p.standing
}

// Lives returns the remaining lives, zero once eliminated.
func (p Participant) Lives() int {
	if a, ok := p.standing.(Active); ok {
		return a.Lives
	}
	return 0
}

// IsActive reports whether the participant is still in the game.
func (p Participant) IsActive() bool {
	_, ok := p.standing.(Active)
	return ok
}

// EliminatedAt returns when the participant was knocked out, or nil.
func (p Participant) EliminatedAt() *time.Time {
	if e, ok := p.standing.(Eliminated); ok && !e.At.IsZero() {
		at := e.At
		return &at
	}
	return nil
}

// LoseLives removes n lives. It returns true only on the transition to
// eliminated; an eliminated participant is left untouched.
func (p *Participant) LoseLives(n int, at time.Time) bool {
	a, ok := p.standing.(Active)
	if !ok || n <= 0 {
		return false
	}
	if a.Lives-n > 0 {
		p.standing = Active{Lives: a.Lives - n}
		return false
	}
	p.standing = Eliminated{At: at}
	return true
}

type participantJSON struct {
	UserID             string     `json:"userId"`
	Lives              int        `json:"lives"`
	IsActive           bool       `json:"isActive"`
	EliminatedAt       *time.Time `json:"eliminatedAt,omitempty"`
	JoinedAt           time.Time  `json:"joinedAt"`
	LastPredictionDate *time.Time `json:"lastPredictionDate,omitempty"`
	TotalPredictions   int        `json:"totalPredictions"`
	CorrectPredictions int        `json:"correctPredictions"`
}

func (p Participant) MarshalJSON() ([]byte, error) {
	return json.Marshal(participantJSON{
		UserID:             p.UserID,
		Lives:              p.Lives(),
		IsActive:           p.IsActive(),
		EliminatedAt:       p.EliminatedAt(),
		JoinedAt:           p.JoinedAt,
		LastPredictionDate: p.LastPredictionDate,
		TotalPredictions:   p.TotalPredictions,
		CorrectPredictions: p.CorrectPredictions,
	})
}

// UnmarshalJSON reads the stored flat shape. A record claiming to be active
// with no lives is read as eliminated.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var raw participantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Participant{
		UserID:             raw.UserID,
		JoinedAt:           raw.JoinedAt,
		LastPredictionDate: raw.LastPredictionDate,
		TotalPredictions:   raw.TotalPredictions,
		CorrectPredictions: raw.CorrectPredictions,
	}
	switch {
	case raw.IsActive && raw.Lives > 0:
		p.standing = Active{Lives: raw.Lives}
	case raw.EliminatedAt != nil:
		p.standing = Eliminated{At: *raw.EliminatedAt}
	default:
		p.standing = Eliminated{}
	}
	return nil
}
