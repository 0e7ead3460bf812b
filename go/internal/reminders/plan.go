// Package reminders arms one deadline reminder per matchday: the day before
// a matchday starts, every player still alive in some league gets an email
// 24 hours before the first kickoff.
package reminders

import (
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
)

// Lead is how long before the first kickoff the reminder goes out.
const Lead = 24 * time.Hour

const dateLayout = "2006-01-02"

// SkipReason says why a plan produced no task
type SkipReason string

const (
	SkipNotTomorrow    SkipReason = "not_tomorrow"
	SkipNoFixtures     SkipReason = "no_fixtures"
	SkipFireTimePassed SkipReason = "fire_time_passed"
	SkipNoRecipients   SkipReason = "no_recipients"
	SkipAlreadyFired   SkipReason = "already_fired"
)

// Plan decides whether md needs a reminder as of now. The matchday must
// start tomorrow in loc and the fire time must still be ahead. It returns
// an empty reason when the task should be armed.
func Plan(now time.Time, loc *time.Location, md models.Matchday, recipients []models.Recipient) (models.ReminderTask, SkipReason) {
	if loc == nil {
		loc = time.UTC
	}
	tomorrow := now.In(loc).AddDate(0, 0, 1).Format(dateLayout)
	if md.StartDate != tomorrow {
		return models.ReminderTask{}, SkipNotTomorrow
	}

	first, ok := md.FirstMatch()
	if !ok {
		return models.ReminderTask{}, SkipNoFixtures
	}

	fireAt := first.Add(-Lead)
	if !fireAt.After(now) {
		return models.ReminderTask{}, SkipFireTimePassed
	}
	if len(recipients) == 0 {
		return models.ReminderTask{}, SkipNoRecipients
	}

	return models.ReminderTask{
		Matchday:   md.Number,
		FireAt:     fireAt.UTC(),
		FirstMatch: first.UTC(),
		Recipients: recipients,
		Status:     models.ReminderArmed,
	}, ""
}
