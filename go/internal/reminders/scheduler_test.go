package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/metrics"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/mcdev12/survivor/go/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	mu        sync.Mutex
	current   int
	matchdays map[int]models.Matchday
}

func (f *fakeFeed) CurrentMatchday(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeFeed) Matchday(_ context.Context, n int) (models.Matchday, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	md, ok := f.matchdays[n]
	if !ok {
		return models.Matchday{}, apperrors.NotFound("no such matchday")
	}
	return md, nil
}

func (f *fakeFeed) set(md models.Matchday) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchdays[md.Number] = md
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	fail map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type sendCounter struct {
	metrics.NoOp
	mu       sync.Mutex
	ok, fail int
}

func (c *sendCounter) RecordReminderSend(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.ok++
		return
	}
	c.fail++
}

// Friday 00:30 in New York, the day before kickoff.
var armTime = time.Date(2025, 8, 15, 4, 30, 0, 0, time.UTC)

type harness struct {
	sched   *Scheduler
	feed    *fakeFeed
	repo    *Repository
	store   *docstore.MemoryStore
	mailer  *recordingMailer
	clock   *clockwork.FakeClock
	counter *sendCounter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		feed:    &fakeFeed{current: 1, matchdays: map[int]models.Matchday{1: upcoming(1, "2025-08-16", kickoff, kickoff.Add(2*time.Hour))}},
		store:   docstore.NewMemoryStore(),
		mailer:  &recordingMailer{},
		clock:   clockwork.NewFakeClockAt(armTime),
		counter: &sendCounter{},
	}
	h.repo = NewRepository(h.store)
	h.sched = NewScheduler(h.feed, h.repo, h.mailer, h.clock,
		WithLocation(newYork),
		WithFrontEndURL("https://survivor.example.com"),
		WithMetrics(h.counter),
	)
	t.Cleanup(h.sched.Stop)

	h.addUser(t, "u1", "one@example.com", models.Membership{LeagueID: "l1", Lives: 2, IsActive: true})
	h.addUser(t, "u2", "two@example.com", models.Membership{LeagueID: "l1", Lives: 1, IsActive: true})
	return h
}

func (h *harness) addUser(t *testing.T, id, email string, memberships ...models.Membership) {
	t.Helper()
	ctx := context.Background()
	userRef := docstore.Doc(models.UsersCollection, id)
	require.NoError(t, h.store.Set(ctx, userRef, models.User{ID: id, Email: email, Username: id}))
	for _, m := range memberships {
		require.NoError(t, h.store.Set(ctx, docstore.Doc(userRef.Sub(models.MembershipsCollection), m.LeagueID), m))
	}
}

func (h *harness) waitForTimer(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
}

func TestArmAndFire(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.sched.Arm(ctx))
	assert.Equal(t, StateArmed, h.sched.State())

	task, ok := h.sched.Task()
	require.True(t, ok)
	assert.Equal(t, kickoff.Add(-Lead), task.FireAt)
	assert.Len(t, task.Recipients, 2)

	stored, err := h.repo.GetTask(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ReminderArmed, stored.Status)

	h.waitForTimer(t)
	h.clock.Advance(task.FireAt.Sub(armTime) - time.Second)
	assert.Equal(t, 0, h.mailer.count())

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.sched.State() == StateFired && h.mailer.count() == 2 },
		time.Second, 5*time.Millisecond)

	stored, err = h.repo.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderFired, stored.Status)
	assert.NotNil(t, stored.FiredAt)
	assert.Equal(t, "Match Reminder for Matchweek 1", h.mailer.sent[0].Subject)
}

func TestNextCycleAfterFireReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.sched.Arm(ctx))
	task, _ := h.sched.Task()
	h.waitForTimer(t)
	h.clock.Advance(task.FireAt.Sub(armTime))
	require.Eventually(t, func() bool { return h.sched.State() == StateFired && h.mailer.count() == 2 },
		time.Second, 5*time.Millisecond)

	h.clock.Advance(24 * time.Hour)
	require.NoError(t, h.sched.Arm(ctx))
	assert.Equal(t, StateIdle, h.sched.State())
	assert.Equal(t, 2, h.mailer.count())

	last, ok := h.sched.Task()
	require.True(t, ok)
	assert.Equal(t, models.ReminderFired, last.Status)
}

func TestArmSameTaskKeepsTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.sched.Arm(ctx))
	first, _ := h.sched.Task()

	h.clock.Advance(time.Minute)
	require.NoError(t, h.sched.Arm(ctx))
	second, _ := h.sched.Task()

	assert.Equal(t, first.ArmedAt, second.ArmedAt)
	h.waitForTimer(t)
}

func TestArmReplacesChangedTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.sched.Arm(ctx))
	oldTask, _ := h.sched.Task()

	// Kickoff moved two hours later.
	h.feed.set(upcoming(1, "2025-08-16", kickoff.Add(2*time.Hour)))
	require.NoError(t, h.sched.Arm(ctx))
	newTask, _ := h.sched.Task()
	assert.Equal(t, oldTask.FireAt.Add(2*time.Hour), newTask.FireAt)

	h.waitForTimer(t)
	h.clock.Advance(oldTask.FireAt.Sub(armTime))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, h.mailer.count())
	assert.Equal(t, StateArmed, h.sched.State())

	h.clock.Advance(2 * time.Hour)
	require.Eventually(t, func() bool { return h.mailer.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestArmSkipsWhenNothingStartsTomorrow(t *testing.T) {
	h := newHarness(t)
	h.feed.set(upcoming(1, "2025-08-20", kickoff.Add(4*24*time.Hour)))

	require.NoError(t, h.sched.Arm(context.Background()))
	assert.Equal(t, StateIdle, h.sched.State())

	task, err := h.repo.GetTask(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSkippedCycleLeavesArmedTimer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.sched.Arm(ctx))

	h.feed.set(upcoming(1, "2025-08-20", kickoff.Add(4*24*time.Hour)))
	require.NoError(t, h.sched.Arm(ctx))
	assert.Equal(t, StateArmed, h.sched.State())
}

func TestArmLooksAtNextMatchday(t *testing.T) {
	h := newHarness(t)
	h.feed.set(upcoming(1, "2025-08-09", kickoff.Add(-7*24*time.Hour)))
	h.feed.set(upcoming(2, "2025-08-16", kickoff))

	require.NoError(t, h.sched.Arm(context.Background()))
	task, ok := h.sched.Task()
	require.True(t, ok)
	assert.Equal(t, 2, task.Matchday)
}

func TestArmSkipsFiredMatchday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	firedAt := armTime.Add(-time.Hour)
	require.NoError(t, h.repo.SaveTask(ctx, models.ReminderTask{Matchday: 1, Status: models.ReminderFired, FiredAt: &firedAt}))

	require.NoError(t, h.sched.Arm(ctx))
	assert.Equal(t, StateIdle, h.sched.State())
}

func TestArmWithoutRecipients(t *testing.T) {
	h := newHarness(t)
	empty := NewRepository(docstore.NewMemoryStore())
	sched := NewScheduler(h.feed, empty, h.mailer, h.clock, WithLocation(newYork))

	require.NoError(t, sched.Arm(context.Background()))
	assert.Equal(t, StateIdle, sched.State())
}

func TestFailedSendDoesNotBlockOthers(t *testing.T) {
	h := newHarness(t)
	h.mailer.fail = map[string]bool{"one@example.com": true}
	require.NoError(t, h.sched.Arm(context.Background()))

	task, _ := h.sched.Task()
	h.waitForTimer(t)
	h.clock.Advance(task.FireAt.Sub(armTime))

	require.Eventually(t, func() bool {
		h.counter.mu.Lock()
		defer h.counter.mu.Unlock()
		return h.counter.ok == 1 && h.counter.fail == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "two@example.com", h.mailer.sent[0].To)
}

func TestStopCancelsPendingTimer(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Arm(context.Background()))
	task, _ := h.sched.Task()

	h.sched.Stop()
	assert.Equal(t, StateIdle, h.sched.State())

	h.clock.Advance(task.FireAt.Sub(armTime))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, h.mailer.count())
}

func TestActiveRecipients(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "u3", "three@example.com", models.Membership{LeagueID: "l1", Lives: 0, IsActive: false})
	h.addUser(t, "u4", "four@example.com",
		models.Membership{LeagueID: "l1", Lives: 0, IsActive: false},
		models.Membership{LeagueID: "l2", Lives: 3, IsActive: true})
	h.addUser(t, "u5", "five@example.com")

	recipients, err := h.repo.ActiveRecipients(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, r := range recipients {
		ids = append(ids, r.UserID)
	}
	assert.Equal(t, []string{"u1", "u2", "u4"}, ids)
	assert.Equal(t, "u1", recipients[0].Name)
}
