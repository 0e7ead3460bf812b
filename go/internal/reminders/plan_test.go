package reminders

import (
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newYork = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Saturday 2025-08-16, first kickoff 11:30 UTC (07:30 EDT).
var kickoff = time.Date(2025, 8, 16, 11, 30, 0, 0, time.UTC)

func upcoming(number int, startDate string, kickoffs ...time.Time) models.Matchday {
	md := models.Matchday{Number: number, StartDate: startDate, EndDate: startDate}
	for i, k := range kickoffs {
		md.Matches = append(md.Matches, models.Match{ID: number*100 + i, Matchday: number, UTCDate: k, Status: models.MatchTimed})
	}
	return md
}

var someone = []models.Recipient{{UserID: "u1", Email: "u1@example.com", Name: "Uno"}}

func TestPlan(t *testing.T) {
	friday := time.Date(2025, 8, 15, 4, 30, 0, 0, time.UTC) // 00:30 EDT

	tests := []struct {
		name       string
		now        time.Time
		md         models.Matchday
		recipients []models.Recipient
		want       SkipReason
	}{
		{name: "armed", now: friday, md: upcoming(1, "2025-08-16", kickoff.Add(3*time.Hour), kickoff), recipients: someone},
		{name: "matchday starts today", now: friday, md: upcoming(1, "2025-08-15", kickoff), recipients: someone, want: SkipNotTomorrow},
		{name: "matchday starts in two days", now: friday, md: upcoming(1, "2025-08-17", kickoff), recipients: someone, want: SkipNotTomorrow},
		{name: "no fixtures", now: friday, md: upcoming(1, "2025-08-16"), recipients: someone, want: SkipNoFixtures},
		{name: "fire time passed", now: kickoff.Add(-Lead), md: upcoming(1, "2025-08-16", kickoff), recipients: someone, want: SkipFireTimePassed},
		{name: "no recipients", now: friday, md: upcoming(1, "2025-08-16", kickoff), want: SkipNoRecipients},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, reason := Plan(tt.now, newYork, tt.md, tt.recipients)
			assert.Equal(t, tt.want, reason)
			if tt.want != "" {
				assert.Zero(t, task)
			}
		})
	}
}

func TestPlanFiresOneLeadBeforeFirstKickoff(t *testing.T) {
	now := time.Date(2025, 8, 15, 4, 30, 0, 0, time.UTC)
	task, reason := Plan(now, newYork, upcoming(3, "2025-08-16", kickoff.Add(2*time.Hour), kickoff), someone)
	require.Empty(t, reason)

	assert.Equal(t, 3, task.Matchday)
	assert.Equal(t, kickoff, task.FirstMatch)
	assert.Equal(t, kickoff.Add(-24*time.Hour), task.FireAt)
	assert.Equal(t, models.ReminderArmed, task.Status)
	assert.Equal(t, someone, task.Recipients)
}

func TestPlanComputesTomorrowInZone(t *testing.T) {
	// 02:00 UTC on the 16th is still the evening of the 15th in New York.
	now := time.Date(2025, 8, 16, 2, 0, 0, 0, time.UTC)
	md := upcoming(1, "2025-08-16", kickoff.Add(32*time.Hour))

	_, reason := Plan(now, newYork, md, someone)
	assert.Empty(t, reason)

	_, reason = Plan(now, time.UTC, md, someone)
	assert.Equal(t, SkipNotTomorrow, reason)
}

func TestCompose(t *testing.T) {
	task := models.ReminderTask{Matchday: 4, FirstMatch: time.Date(2025, 9, 13, 19, 0, 0, 0, time.UTC)}
	msg, err := Compose(models.Recipient{Email: "pat@example.com", Name: "Pat <Coach>"}, task, newYork, "https://survivor.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "pat@example.com", msg.To)
	assert.Equal(t, "Match Reminder for Matchweek 4", msg.Subject)
	assert.Contains(t, msg.HTML, "Pat &lt;Coach&gt;")
	assert.Contains(t, msg.HTML, "03:00 PM EDT")
	assert.Contains(t, msg.HTML, `href="https://survivor.example.com/login"`)
	assert.False(t, strings.Contains(msg.HTML, "<Coach>"))
}
