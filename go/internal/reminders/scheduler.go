package reminders

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/events"
	"github.com/mcdev12/survivor/go/internal/metrics"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/mcdev12/survivor/go/internal/notify"
	"github.com/rs/zerolog/log"
)

// State is where the scheduler is in the current cycle
type State string

const (
	StateIdle  State = "idle"
	StateArmed State = "armed"
	StateFired State = "fired"
)

// Feed provides matchday fixtures
type Feed interface {
	CurrentMatchday(ctx context.Context) (int, error)
	Matchday(ctx context.Context, n int) (models.Matchday, error)
}

// TaskRepository persists reminder tasks and lists recipients
type TaskRepository interface {
	GetTask(ctx context.Context, matchday int) (*models.ReminderTask, error)
	SaveTask(ctx context.Context, task models.ReminderTask) error
	ActiveRecipients(ctx context.Context) ([]models.Recipient, error)
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocation sets the zone "tomorrow" and kickoff times are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithFrontEndURL sets the base of the login link in the email.
func WithFrontEndURL(u string) Option {
	return func(s *Scheduler) { s.frontEndURL = u }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Scheduler) { s.publisher = p }
}

func WithMetrics(c metrics.Collector) Option {
	return func(s *Scheduler) { s.metrics = c }
}

// Scheduler holds at most one pending reminder timer. Every Arm call
// re-derives the task from current data, so a restart recovers by arming
// again.
type Scheduler struct {
	feed        Feed
	repo        TaskRepository
	mailer      notify.Mailer
	clock       clockwork.Clock
	loc         *time.Location
	frontEndURL string
	publisher   events.Publisher
	metrics     metrics.Collector

	armMu sync.Mutex

	mu     sync.Mutex
	state  State
	task   *models.ReminderTask
	timer  clockwork.Timer
	cancel chan struct{}

	inflight sync.WaitGroup
}

// NewScheduler creates an idle scheduler
func NewScheduler(feed Feed, repo TaskRepository, mailer notify.Mailer, clock clockwork.Clock, opts ...Option) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Scheduler{
		feed:      feed,
		repo:      repo,
		mailer:    mailer,
		clock:     clock,
		loc:       time.UTC,
		publisher: events.NopPublisher{},
		metrics:   metrics.NoOp{},
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current cycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Task returns a copy of the armed or last fired task.
func (s *Scheduler) Task() (models.ReminderTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return models.ReminderTask{}, false
	}
	return *s.task, true
}

// Arm runs one arming cycle. The current matchday is checked first, then
// the next one, since the feed only advances its current matchday once the
// previous round is over. A cycle that finds nothing to arm leaves any
// pending timer in place. A fired cycle returns to idle.
func (s *Scheduler) Arm(ctx context.Context) error {
	s.armMu.Lock()
	defer s.armMu.Unlock()

	s.mu.Lock()
	if s.state == StateFired {
		s.state = StateIdle
	}
	s.mu.Unlock()

	current, err := s.feed.CurrentMatchday(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reminder arming: failed to get current matchday")
		return fmt.Errorf("failed to get current matchday: %w", err)
	}

	var recipients []models.Recipient
	loaded := false
	for _, n := range []int{current, current + 1} {
		md, err := s.feed.Matchday(ctx, n)
		if err != nil {
			log.Warn().Err(err).Int("matchday", n).Msg("reminder arming: failed to fetch matchday")
			continue
		}
		if !loaded {
			if recipients, err = s.repo.ActiveRecipients(ctx); err != nil {
				log.Error().Err(err).Msg("reminder arming: failed to list recipients")
				return err
			}
			loaded = true
		}

		task, reason := Plan(s.clock.Now(), s.loc, md, recipients)
		if reason == "" {
			reason, err = s.checkFired(ctx, n)
			if err != nil {
				return err
			}
		}
		if reason != "" {
			log.Info().Int("matchday", n).Str("reason", string(reason)).Msg("no reminder armed for matchday")
			continue
		}
		return s.arm(ctx, task)
	}
	return nil
}

func (s *Scheduler) checkFired(ctx context.Context, matchday int) (SkipReason, error) {
	existing, err := s.repo.GetTask(ctx, matchday)
	if err != nil {
		log.Error().Err(err).Int("matchday", matchday).Msg("reminder arming: failed to read task")
		return "", err
	}
	if existing != nil && existing.Status == models.ReminderFired {
		return SkipAlreadyFired, nil
	}
	return "", nil
}

func (s *Scheduler) arm(ctx context.Context, task models.ReminderTask) error {
	s.mu.Lock()
	if s.state == StateArmed && s.task.Matchday == task.Matchday && s.task.FireAt.Equal(task.FireAt) {
		s.mu.Unlock()
		log.Debug().Int("matchday", task.Matchday).Time("fire_at", task.FireAt).Msg("reminder already armed")
		return nil
	}
	s.mu.Unlock()

	task.Status = models.ReminderArmed
	task.ArmedAt = s.clock.Now().UTC()
	if err := s.repo.SaveTask(ctx, task); err != nil {
		log.Error().Err(err).Int("matchday", task.Matchday).Msg("reminder arming: failed to save task")
		return err
	}

	duration := task.FireAt.Sub(s.clock.Now())
	timer := s.clock.NewTimer(duration)
	cancel := make(chan struct{})

	s.mu.Lock()
	s.stopLocked()
	s.state = StateArmed
	s.task = &task
	s.timer = timer
	s.cancel = cancel
	s.mu.Unlock()

	go s.wait(timer, cancel, task)

	s.metrics.SetReminderArmed(true)
	events.Emit(ctx, s.publisher, events.TypeReminderArmed, fmt.Sprint(task.Matchday), task.ArmedAt, events.ReminderPayload{
		Matchday:   task.Matchday,
		FireAt:     task.FireAt,
		Recipients: len(task.Recipients),
	})
	log.Info().
		Int("matchday", task.Matchday).
		Time("fire_at", task.FireAt).
		Dur("duration", duration).
		Int("recipients", len(task.Recipients)).
		Msg("armed reminder")
	return nil
}

func (s *Scheduler) wait(t clockwork.Timer, cancel <-chan struct{}, task models.ReminderTask) {
	select {
	case <-t.Chan():
		s.fire(task, cancel)
	case <-cancel:
		log.Debug().Int("matchday", task.Matchday).Msg("reminder timer cancelled")
	}
}

func (s *Scheduler) fire(task models.ReminderTask, cancel <-chan struct{}) {
	s.mu.Lock()
	if s.cancel != cancel {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	defer s.inflight.Done()

	now := s.clock.Now().UTC()
	task.Status = models.ReminderFired
	task.FiredAt = &now
	s.state = StateFired
	s.task = &task
	s.timer = nil
	s.mu.Unlock()
	s.metrics.SetReminderArmed(false)

	ctx := context.Background()
	// Record the fire before sending so a restart mid-batch cannot resend.
	if err := s.repo.SaveTask(ctx, task); err != nil {
		log.Error().Err(err).Int("matchday", task.Matchday).Msg("failed to mark reminder fired")
	}

	var delivered atomic.Int64
	var wg sync.WaitGroup
	for _, r := range task.Recipients {
		wg.Add(1)
		go func(r models.Recipient) {
			defer wg.Done()
			if s.send(ctx, r, task) {
				delivered.Add(1)
			}
		}(r)
	}
	wg.Wait()

	events.Emit(ctx, s.publisher, events.TypeReminderFired, fmt.Sprint(task.Matchday), now, events.ReminderPayload{
		Matchday:   task.Matchday,
		FireAt:     task.FireAt,
		Recipients: len(task.Recipients),
		Delivered:  int(delivered.Load()),
	})
	log.Info().
		Int("matchday", task.Matchday).
		Int("recipients", len(task.Recipients)).
		Int64("delivered", delivered.Load()).
		Msg("reminder fired")
}

func (s *Scheduler) send(ctx context.Context, r models.Recipient, task models.ReminderTask) bool {
	msg, err := Compose(r, task, s.loc, s.frontEndURL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	s.metrics.RecordReminderSend(err == nil)
	if err != nil {
		log.Error().Err(err).Str("user_id", r.UserID).Int("matchday", task.Matchday).Msg("failed to send reminder")
		return false
	}
	log.Debug().Str("user_id", r.UserID).Int("matchday", task.Matchday).Msg("reminder sent")
	return true
}

// Stop cancels a pending timer and waits for a firing batch to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopLocked()
	if s.state == StateArmed {
		s.state = StateIdle
		s.metrics.SetReminderArmed(false)
	}
	s.mu.Unlock()
	s.inflight.Wait()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		stopAndDrainTimer(s.timer)
		s.timer = nil
	}
	if s.cancel != nil && s.state == StateArmed {
		close(s.cancel)
	}
	s.cancel = nil
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
