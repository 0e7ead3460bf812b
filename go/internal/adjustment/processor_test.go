package adjustment

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/leagues"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/mcdev12/survivor/go/internal/predictions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now    = time.Date(2025, 9, 15, 5, 0, 0, 0, time.UTC)
	joined = time.Date(2025, 9, 6, 5, 0, 0, 0, time.UTC)
)

type harness struct {
	clock     *clockwork.FakeClock
	leagues   *leagues.App
	processor *Processor
}

func newHarness(t *testing.T, opts ...Option) harness {
	t.Helper()
	store := docstore.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(joined)
	app := leagues.NewApp(leagues.NewRepository(store), nil, nil, clock)
	return harness{
		clock:     clock,
		leagues:   app,
		processor: NewProcessor(app, predictions.NewRepository(store), clock, opts...),
	}
}

func (h harness) league(t *testing.T, lives int, ties models.TiePolicy, forgot models.ForgotPolicy, members ...string) string {
	t.Helper()
	ctx := context.Background()
	private := false
	l, err := h.leagues.CreateLeague(ctx, leagues.CreateLeagueRequest{
		Name:             "Survivors",
		MaxParticipants:  10,
		StartDate:        &leagues.Date{Time: now.AddDate(0, -1, 0)},
		EndDate:          &leagues.Date{Time: now.AddDate(0, 8, 0)},
		IsPrivate:        &private,
		CreatedBy:        members[0],
		InitialLives:     lives,
		TiesCountAs:      ties,
		AdvancedSettings: models.AdvancedSettings{PlayerForgetToPick: forgot},
	})
	require.NoError(t, err)
	for _, m := range members[1:] {
		require.NoError(t, h.leagues.JoinLeague(ctx, l.ID, m))
		_, err := h.leagues.AcceptJoinRequest(ctx, l.ID, m, members[0])
		require.NoError(t, err)
	}
	if d := now.Sub(h.clock.Now()); d > 0 {
		h.clock.Advance(d)
	}
	return l.ID
}

func (h harness) accept(t *testing.T, leagueID, userID, creator string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.leagues.JoinLeague(ctx, leagueID, userID))
	_, err := h.leagues.AcceptJoinRequest(ctx, leagueID, userID, creator)
	require.NoError(t, err)
}

func (h harness) pick(t *testing.T, leagueID, userID string, team int, outcome models.Outcome) {
	t.Helper()
	require.NoError(t, h.leagues.SubmitPrediction(context.Background(), &models.Prediction{
		ID:                models.PredictionID(leagueID, userID, 4),
		UserID:            userID,
		LeagueID:          leagueID,
		Matchday:          4,
		TeamID:            team,
		PredictionOutcome: outcome,
		Source:            models.SourceUser,
		Status:            models.PredictionPending,
		Timestamp:         now.Add(-72 * time.Hour),
	}))
}

func (h harness) participant(t *testing.T, leagueID, userID string) models.Participant {
	t.Helper()
	l, err := h.leagues.GetLeague(context.Background(), leagueID)
	require.NoError(t, err)
	p, ok := l.Participant(userID)
	require.True(t, ok)
	return *p
}

func finishedMatchday() models.Matchday {
	return models.Matchday{Number: 4, Matches: []models.Match{
		match(1, arsenal, leeds, models.MatchFinished, models.WinnerHome),
		match(2, city, united, models.MatchFinished, models.WinnerDraw),
	}}
}

func TestProcessMatchdayIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.league(t, 1, models.TiesCountAsLose, models.ForgotNone, "A", "B", "C")
	h.pick(t, id, "A", arsenal, models.OutcomeDefault)
	h.pick(t, id, "B", leeds, models.OutcomeDefault)
	h.pick(t, id, "C", city, models.OutcomeDefault)

	first, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Evaluated)
	assert.Equal(t, 1, first.Correct)
	assert.Equal(t, 2, first.Incorrect)
	assert.Equal(t, 2, first.LivesLost)
	assert.Equal(t, 2, first.Eliminated)

	second, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
	require.NoError(t, err)
	assert.Zero(t, second.Evaluated)
	assert.Zero(t, second.LivesLost)

	a := h.participant(t, id, "A")
	assert.Equal(t, 1, a.Lives())
	assert.Equal(t, 1, a.CorrectPredictions)
	assert.Equal(t, 1, a.TotalPredictions)

	b := h.participant(t, id, "B")
	assert.Equal(t, 0, b.Lives())
	assert.False(t, b.IsActive())
	require.NotNil(t, b.EliminatedAt())
	assert.Equal(t, now, *b.EliminatedAt())
}

func TestProcessMatchdayLeavesOpenFixturesPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.league(t, 2, models.TiesCountAsLose, models.ForgotLoseLife, "A", "B", "C")
	h.pick(t, id, "A", arsenal, models.OutcomeDefault)
	h.pick(t, id, "B", city, models.OutcomeDefault)

	open := finishedMatchday()
	open.Matches[1].Status = models.MatchInPlay
	open.Matches[1].Winner = ""

	sum, err := h.processor.ProcessMatchday(ctx, open)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 1, sum.Pending)
	assert.Zero(t, sum.Missed)
	assert.Equal(t, 2, h.participant(t, id, "C").Lives())

	sum, err = h.processor.ProcessMatchday(ctx, finishedMatchday())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Missed)
	assert.Equal(t, 2, sum.Incorrect)
	assert.Equal(t, 1, h.participant(t, id, "B").Lives())
	assert.Equal(t, 1, h.participant(t, id, "C").Lives())
}

func TestTiePolicies(t *testing.T) {
	tests := []struct {
		ties  models.TiePolicy
		lives int
		want  func(s Summary) int
	}{
		{models.TiesCountAsWin, 2, func(s Summary) int { return s.Correct }},
		{models.TiesCountAsLose, 1, func(s Summary) int { return s.Incorrect }},
		{models.TiesCountAsDraw, 2, func(s Summary) int { return s.Pushes }},
	}
	for _, tt := range tests {
		t.Run(string(tt.ties), func(t *testing.T) {
			h := newHarness(t)
			id := h.league(t, 2, tt.ties, models.ForgotNone, "A")
			h.pick(t, id, "A", united, models.OutcomeWin)

			sum, err := h.processor.ProcessMatchday(context.Background(), finishedMatchday())
			require.NoError(t, err)
			assert.Equal(t, 1, tt.want(sum))
			assert.Equal(t, tt.lives, h.participant(t, id, "A").Lives())
		})
	}
}

func TestForgotToPickPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("lose life", func(t *testing.T) {
		h := newHarness(t)
		id := h.league(t, 1, models.TiesCountAsLose, models.ForgotLoseLife, "A", "B")
		h.pick(t, id, "A", arsenal, models.OutcomeDefault)

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Missed)
		assert.Equal(t, 1, sum.Eliminated)
		assert.False(t, h.participant(t, id, "B").IsActive())

		again, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Zero(t, again.Missed)
		assert.Zero(t, again.Evaluated)
	})

	t.Run("random pick", func(t *testing.T) {
		h := newHarness(t, WithPicker(func(int) int { return 0 }))
		id := h.league(t, 1, models.TiesCountAsLose, models.ForgotRandomPick, "A")

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Equal(t, 1, sum.AutoPicked)
		assert.Equal(t, 1, sum.Correct)
		a := h.participant(t, id, "A")
		assert.Equal(t, 1, a.Lives())
		assert.Nil(t, a.LastPredictionDate)
	})

	t.Run("none", func(t *testing.T) {
		h := newHarness(t)
		id := h.league(t, 1, models.TiesCountAsLose, models.ForgotNone, "A")

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Zero(t, sum.Missed)
		assert.Equal(t, 1, h.participant(t, id, "A").Lives())
	})
}

func TestForgotToPickOnlyCountsMembersBeforeKickoff(t *testing.T) {
	ctx := context.Background()

	t.Run("member accepted after kickoff", func(t *testing.T) {
		h := newHarness(t)
		id := h.league(t, 3, models.TiesCountAsLose, models.ForgotLoseLife, "A")
		h.accept(t, id, "B", "A")

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Missed)
		assert.Equal(t, 1, sum.LivesLost)
		assert.Equal(t, 2, h.participant(t, id, "A").Lives())
		assert.Equal(t, 3, h.participant(t, id, "B").Lives())
	})

	t.Run("league created after kickoff", func(t *testing.T) {
		h := newHarness(t)
		h.clock.Advance(now.Sub(joined))
		id := h.league(t, 3, models.TiesCountAsLose, models.ForgotLoseLife, "A", "B")

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Zero(t, sum.Missed)
		assert.Zero(t, sum.LivesLost)
		assert.Equal(t, 3, h.participant(t, id, "A").Lives())
		assert.Equal(t, 3, h.participant(t, id, "B").Lives())
	})

	t.Run("random pick skips past matchdays", func(t *testing.T) {
		h := newHarness(t, WithPicker(func(int) int { return 0 }))
		h.clock.Advance(now.Sub(joined))
		h.league(t, 1, models.TiesCountAsLose, models.ForgotRandomPick, "A")

		sum, err := h.processor.ProcessMatchday(ctx, finishedMatchday())
		require.NoError(t, err)
		assert.Zero(t, sum.AutoPicked)
		assert.Zero(t, sum.Evaluated)
	})
}
