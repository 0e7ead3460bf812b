// Package cron runs callbacks once a day at a fixed wall clock time.
package cron

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Daily fires a job every day at Hour:Minute in Location
type Daily struct {
	Name     string
	Hour     int
	Minute   int
	Location *time.Location
	Clock    clockwork.Clock
}

// Next returns the first fire time strictly after now. It is computed on
// the wall clock, so DST shifts move the UTC instant rather than the hour.
func (d Daily) Next(now time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

// Run calls job at every fire time until ctx is cancelled. Jobs run
// sequentially; a slow job delays the next fire check rather than
// overlapping it.
func (d Daily) Run(ctx context.Context, job func(ctx context.Context)) {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	for {
		next := d.Next(clock.Now())
		timer := clock.NewTimer(next.Sub(clock.Now()))
		log.Debug().Str("job", d.Name).Time("next_run", next).Msg("scheduled daily job")

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}

		start := clock.Now()
		job(ctx)
		log.Info().Str("job", d.Name).Dur("duration", clock.Since(start)).Msg("daily job finished")
	}
}
