package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.RecordLeagueOperation("accept", nil)
	m.RecordLeagueOperation("accept", errors.New("full"))
	m.RecordLeagueOperation("accept", nil)
	m.RecordLivesLost(2)
	m.RecordLivesLost(0)
	m.RecordElimination()
	m.RecordPredictionSettled("push")
	m.RecordReminderSend(false)
	m.SetReminderArmed(true)
	m.RecordFeedRequest("matches", 200, 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.leagueOps.WithLabelValues("accept", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leagueOps.WithLabelValues("accept", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.livesLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eliminations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderSends.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderArmed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedRequests.WithLabelValues("matches", "200")))

	m.SetReminderArmed(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.reminderArmed))
}
