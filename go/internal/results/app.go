// Package results ingests matchday fixtures from the feed, mirrors them in
// the store and drives the daily settlement run.
package results

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/internal/adjustment"
	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/mcdev12/survivor/go/internal/models"
	"github.com/rs/zerolog/log"
)

const defaultTTL = time.Minute

// Feed is the sports results source
type Feed interface {
	CurrentMatchday(ctx context.Context) (int, error)
	Matchday(ctx context.Context, n int) (models.Matchday, error)
}

// ResultsRepository defines what the app layer needs from the repository
type ResultsRepository interface {
	SaveMatches(ctx context.Context, matches []models.Match) error
}

// Processor settles a matchday's predictions
type Processor interface {
	ProcessMatchday(ctx context.Context, md models.Matchday) (adjustment.Summary, error)
}

// DailyReport is what one daily run did
type DailyReport struct {
	CurrentMatchday int                  `json:"currentMatchday"`
	Summaries       []adjustment.Summary `json:"summaries"`
}

type cachedMatchday struct {
	md        models.Matchday
	fetchedAt time.Time
}

// App fronts the feed with a short-lived cache so request paths (pick
// validation, reminders) do not burn the feed's rate limit.
type App struct {
	repo      ResultsRepository
	feed      Feed
	processor Processor
	clock     clockwork.Clock
	ttl       time.Duration

	mu        sync.Mutex
	current   int
	currentAt time.Time
	matchdays map[int]cachedMatchday
}

// NewApp creates a new results App
func NewApp(repo ResultsRepository, feed Feed, processor Processor, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:      repo,
		feed:      feed,
		processor: processor,
		clock:     clock,
		ttl:       defaultTTL,
		matchdays: make(map[int]cachedMatchday),
	}
}

func (a *App) fresh(at time.Time) bool {
	return !at.IsZero() && a.clock.Since(at) < a.ttl
}

// CurrentMatchday returns the competition's current matchday.
func (a *App) CurrentMatchday(ctx context.Context) (int, error) {
	a.mu.Lock()
	if a.current > 0 && a.fresh(a.currentAt) {
		n := a.current
		a.mu.Unlock()
		return n, nil
	}
	a.mu.Unlock()

	n, err := a.feed.CurrentMatchday(ctx)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	a.current, a.currentAt = n, a.clock.Now()
	a.mu.Unlock()
	return n, nil
}

// Matchday returns matchday n, served from cache when recent.
func (a *App) Matchday(ctx context.Context, n int) (models.Matchday, error) {
	a.mu.Lock()
	c, ok := a.matchdays[n]
	a.mu.Unlock()
	if ok && a.fresh(c.fetchedAt) {
		return c.md, nil
	}
	return a.MatchdayResults(ctx, n)
}

// MatchdayResults fetches matchday n from the feed and mirrors its fixtures.
func (a *App) MatchdayResults(ctx context.Context, n int) (models.Matchday, error) {
	md, err := a.feed.Matchday(ctx, n)
	if err != nil {
		return models.Matchday{}, err
	}
	if err := a.repo.SaveMatches(ctx, md.Matches); err != nil {
		return models.Matchday{}, apperrors.Persistence("Error saving match results", err)
	}

	a.mu.Lock()
	a.matchdays[n] = cachedMatchday{md: md, fetchedAt: a.clock.Now()}
	a.mu.Unlock()

	log.Debug().Int("matchday", n).Int("matches", len(md.Matches)).Msg("mirrored matchday")
	return md, nil
}

// CurrentMatchdayResults fetches and mirrors the current matchday.
func (a *App) CurrentMatchdayResults(ctx context.Context) (models.Matchday, error) {
	n, err := a.CurrentMatchday(ctx)
	if err != nil {
		return models.Matchday{}, err
	}
	return a.MatchdayResults(ctx, n)
}

// RunDaily refreshes the previous and the current matchday and settles
// both. The previous matchday covers results that landed after the feed
// moved on.
func (a *App) RunDaily(ctx context.Context) (DailyReport, error) {
	current, err := a.feed.CurrentMatchday(ctx)
	if err != nil {
		return DailyReport{}, err
	}
	a.mu.Lock()
	a.current, a.currentAt = current, a.clock.Now()
	a.mu.Unlock()

	report := DailyReport{CurrentMatchday: current}
	for _, n := range []int{current - 1, current} {
		if n <= 0 {
			continue
		}
		md, err := a.MatchdayResults(ctx, n)
		if err != nil {
			log.Error().Err(err).Int("matchday", n).Msg("failed to refresh matchday")
			continue
		}
		sum, err := a.processor.ProcessMatchday(ctx, md)
		if err != nil {
			log.Error().Err(err).Int("matchday", n).Msg("failed to process matchday")
			continue
		}
		report.Summaries = append(report.Summaries, sum)
	}

	log.Info().Int("current_matchday", current).Int("processed", len(report.Summaries)).Msg("daily results run completed")
	return report, nil
}
