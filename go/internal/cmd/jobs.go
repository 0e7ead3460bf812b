package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcdev12/survivor/go/internal/config"
	"github.com/mcdev12/survivor/go/internal/cron"
	"github.com/rs/zerolog/log"
)

// dailyJobs builds the results and reminder triggers from the schedule.
func dailyJobs(cfg *config.Config) (cron.Daily, cron.Daily, error) {
	loc := cfg.Location()
	resultsHour, resultsMinute, err := config.ParseClock(cfg.Schedule.ResultsAt)
	if err != nil {
		return cron.Daily{}, cron.Daily{}, fmt.Errorf("invalid results schedule: %w", err)
	}
	remindersHour, remindersMinute, err := config.ParseClock(cfg.Schedule.RemindersAt)
	if err != nil {
		return cron.Daily{}, cron.Daily{}, fmt.Errorf("invalid reminders schedule: %w", err)
	}
	resultsJob := cron.Daily{Name: "daily_results", Hour: resultsHour, Minute: resultsMinute, Location: loc}
	remindersJob := cron.Daily{Name: "reminders", Hour: remindersHour, Minute: remindersMinute, Location: loc}
	return resultsJob, remindersJob, nil
}

// startJobs runs the daily results and reminder jobs plus one reminder pass
// at startup so a restart re-arms a pending reminder.
func startJobs(ctx context.Context, cfg *config.Config, s *Services) (*sync.WaitGroup, error) {
	resultsJob, remindersJob, err := dailyJobs(cfg)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		resultsJob.Run(ctx, func(ctx context.Context) {
			if _, err := s.ResultsApp.RunDaily(ctx); err != nil {
				log.Error().Err(err).Msg("daily results job failed")
			}
		})
	}()
	go func() {
		defer wg.Done()
		remindersJob.Run(ctx, armReminders(s))
	}()
	go func() {
		defer wg.Done()
		armReminders(s)(ctx)
	}()
	return &wg, nil
}

func armReminders(s *Services) func(ctx context.Context) {
	return func(ctx context.Context) {
		if err := s.Reminders.Arm(ctx); err != nil {
			log.Error().Err(err).Msg("reminder arming failed")
		}
	}
}
