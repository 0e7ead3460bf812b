package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records domain metrics
type Collector interface {
	RecordLeagueOperation(op string, err error)
	RecordLivesLost(n int)
	RecordElimination()
	RecordPredictionSettled(status string)
	RecordReminderSend(success bool)
	SetReminderArmed(armed bool)
	RecordFeedRequest(endpoint string, statusCode int, duration time.Duration)
}

// NoOp is a no-op implementation for when metrics aren't needed
type NoOp struct{}

func (NoOp) RecordLeagueOperation(string, error)          {}
func (NoOp) RecordLivesLost(int)                          {}
func (NoOp) RecordElimination()                           {}
func (NoOp) RecordPredictionSettled(string)               {}
func (NoOp) RecordReminderSend(bool)                      {}
func (NoOp) SetReminderArmed(bool)                        {}
func (NoOp) RecordFeedRequest(string, int, time.Duration) {}

// Prometheus implements Collector with client_golang vectors
type Prometheus struct {
	leagueOps          *prometheus.CounterVec
	livesLost          prometheus.Counter
	eliminations       prometheus.Counter
	predictions        *prometheus.CounterVec
	reminderSends      *prometheus.CounterVec
	reminderArmed      prometheus.Gauge
	feedRequests       *prometheus.CounterVec
	feedRequestLatency *prometheus.HistogramVec
}

// NewPrometheus registers every metric on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		leagueOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "league_operations_total",
			Help:      "League lifecycle operations by operation and result.",
		}, []string{"op", "result"}),
		livesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "lives_lost_total",
			Help:      "Lives removed from participants.",
		}),
		eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "eliminations_total",
			Help:      "Participants eliminated.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "predictions_settled_total",
			Help:      "Predictions settled by status.",
		}, []string{"status"}),
		reminderSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "reminder_sends_total",
			Help:      "Reminder emails handed to the mailer by result.",
		}, []string{"result"}),
		reminderArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivor",
			Name:      "reminder_armed",
			Help:      "1 while a reminder timer is pending.",
		}),
		feedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivor",
			Name:      "feed_requests_total",
			Help:      "Sports feed requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		feedRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survivor",
			Name:      "feed_request_duration_seconds",
			Help:      "Sports feed request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	reg.MustRegister(
		m.leagueOps,
		m.livesLost,
		m.eliminations,
		m.predictions,
		m.reminderSends,
		m.reminderArmed,
		m.feedRequests,
		m.feedRequestLatency,
	)
	return m
}

func (m *Prometheus) RecordLeagueOperation(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.leagueOps.WithLabelValues(op, result).Inc()
}

func (m *Prometheus) RecordLivesLost(n int) {
	if n > 0 {
		m.livesLost.Add(float64(n))
	}
}

func (m *Prometheus) RecordElimination() {
	m.eliminations.Inc()
}

func (m *Prometheus) RecordPredictionSettled(status string) {
	m.predictions.WithLabelValues(status).Inc()
}

func (m *Prometheus) RecordReminderSend(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.reminderSends.WithLabelValues(result).Inc()
}

func (m *Prometheus) SetReminderArmed(armed bool) {
	if armed {
		m.reminderArmed.Set(1)
		return
	}
	m.reminderArmed.Set(0)
}

func (m *Prometheus) RecordFeedRequest(endpoint string, statusCode int, duration time.Duration) {
	m.feedRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.feedRequestLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}
