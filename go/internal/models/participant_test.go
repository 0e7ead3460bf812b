package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoseLivesStampsEliminationOnce(t *testing.T) {
	joined := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	p := NewParticipant("u1", 2, joined)

	assert.False(t, p.LoseLives(1, joined.Add(time.Hour)))
	assert.Equal(t, 1, p.Lives())
	assert.True(t, p.IsActive())
	assert.Nil(t, p.EliminatedAt())

	first := joined.Add(2 * time.Hour)
	assert.True(t, p.LoseLives(1, first))
	assert.Equal(t, 0, p.Lives())
	assert.False(t, p.IsActive())
	require.NotNil(t, p.EliminatedAt())
	assert.Equal(t, first, *p.EliminatedAt())

	assert.False(t, p.LoseLives(1, first.Add(time.Hour)))
	assert.Equal(t, 0, p.Lives())
	assert.Equal(t, first, *p.EliminatedAt())
}

func TestLoseLivesClampsAtZero(t *testing.T) {
	at := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	p := NewParticipant("u1", 2, at)

	assert.True(t, p.LoseLives(5, at))
	assert.Equal(t, 0, p.Lives())
	assert.IsType(t, Eliminated{}, p.Standing())
}

func TestLoseLivesIgnoresNonPositive(t *testing.T) {
	at := time.Now()
	p := NewParticipant("u1", 3, at)

	assert.False(t, p.LoseLives(0, at))
	assert.False(t, p.LoseLives(-2, at))
	assert.Equal(t, 3, p.Lives())
}

func TestParticipantJSONShape(t *testing.T) {
	at := time.Date(2025, 9, 14, 15, 0, 0, 0, time.UTC)
	p := NewParticipant("u1", 1, at)
	p.TotalPredictions = 4
	p.LoseLives(1, at)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "u1", raw["userId"])
	assert.Equal(t, float64(0), raw["lives"])
	assert.Equal(t, false, raw["isActive"])
	assert.Equal(t, "2025-09-14T15:00:00Z", raw["eliminatedAt"])

	var back Participant
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.IsActive())
	assert.Equal(t, 4, back.TotalPredictions)
	require.NotNil(t, back.EliminatedAt())
	assert.True(t, at.Equal(*back.EliminatedAt()))
}

func TestParticipantJSONNormalizesActiveWithoutLives(t *testing.T) {
	var p Participant
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"u1","lives":0,"isActive":true}`), &p))

	assert.False(t, p.IsActive())
	assert.Equal(t, 0, p.Lives())
}

func TestLeagueMembershipHelpers(t *testing.T) {
	l := League{MaxParticipants: 2}
	l.AddParticipant(NewParticipant("a", 3, time.Now()))
	l.AddPending("b")

	assert.True(t, l.IsParticipant("a"))
	assert.True(t, l.IsPending("b"))
	assert.False(t, l.IsFull())
	assert.Equal(t, []string{"a"}, l.MemberIDs)

	l.RemovePending("b")
	assert.Empty(t, l.PendingRequests)
}

func TestMatchdayFinishedAndFirstMatch(t *testing.T) {
	k1 := time.Date(2025, 9, 13, 11, 30, 0, 0, time.UTC)
	k2 := time.Date(2025, 9, 13, 14, 0, 0, 0, time.UTC)
	md := Matchday{Matches: []Match{
		{ID: 2, UTCDate: k2, Status: MatchFinished},
		{ID: 1, UTCDate: k1, Status: MatchPostponed},
	}}

	first, ok := md.FirstMatch()
	require.True(t, ok)
	assert.Equal(t, k1, first)
	assert.True(t, md.Finished())

	md.Matches[0].Status = MatchInPlay
	assert.False(t, md.Finished())
	assert.False(t, Matchday{}.Finished())
}
