package reminders

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/mcdev12/survivor/go/internal/notify"
)

const kickoffLayout = "03:04 PM MST"

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Match Reminder</title></head>
<body style="background:#f4f4f5;font-family:Helvetica,Arial,sans-serif;margin:0;padding:24px">
  <table role="presentation" width="100%" style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">
    <tr><td>
      <p style="color:#18181b;font-size:15px;line-height:24px;margin:0 0 20px">Hi {{.Name}},</p>
      <p style="color:#18181b;font-size:15px;line-height:24px;margin:0 0 20px">The deadline to make a selection for Matchweek <strong>{{.Matchday}}</strong> is tomorrow at <strong>{{.Kickoff}}</strong>. Don't forget to make your pick.</p>
      <p style="margin:0 0 20px"><a href="{{.LoginURL}}" style="background:#18181b;color:#ffffff;padding:12px 20px;border-radius:6px;text-decoration:none">Make your pick</a></p>
      <p style="color:#71717a;font-size:13px;line-height:20px;margin:0">Good luck!</p>
    </td></tr>
  </table>
</body>
</html>
`))

type reminderView struct {
	Name     string
	Matchday int
	Kickoff  string
	LoginURL string
}

// Subject returns the reminder subject line for matchday.
func Subject(matchday int) string {
	return fmt.Sprintf("Match Reminder for Matchweek %d", matchday)
}

// Compose renders the reminder email for one recipient.
func Compose(r models.Recipient, task models.ReminderTask, loc *time.Location, frontEndURL string) (notify.Message, error) {
	if loc == nil {
		loc = time.UTC
	}
	view := reminderView{
		Name:     r.Name,
		Matchday: task.Matchday,
		Kickoff:  task.FirstMatch.In(loc).Format(kickoffLayout),
		LoginURL: strings.TrimRight(frontEndURL, "/") + "/login",
	}
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, view); err != nil {
		return notify.Message{}, fmt.Errorf("render reminder: %w", err)
	}
	return notify.Message{To: r.Email, Subject: Subject(task.Matchday), HTML: buf.String()}, nil
}
