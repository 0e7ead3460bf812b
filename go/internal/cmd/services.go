package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/survivor/go/clients"
	"github.com/mcdev12/survivor/go/clients/footballdata"
	"github.com/mcdev12/survivor/go/clients/identitytoolkit"
	"github.com/mcdev12/survivor/go/internal/adjustment"
	"github.com/mcdev12/survivor/go/internal/config"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/events"
	"github.com/mcdev12/survivor/go/internal/identity"
	"github.com/mcdev12/survivor/go/internal/leagues"
	"github.com/mcdev12/survivor/go/internal/metrics"
	"github.com/mcdev12/survivor/go/internal/notify"
	"github.com/mcdev12/survivor/go/internal/predictions"
	"github.com/mcdev12/survivor/go/internal/reminders"
	"github.com/mcdev12/survivor/go/internal/results"
	"github.com/mcdev12/survivor/go/internal/teams"
	"github.com/mcdev12/survivor/go/internal/users"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Auth        identity.Authenticator
	Users       *users.Service
	Leagues     *leagues.Service
	Predictions *predictions.Service
	Results     *results.Service
	Teams       *teams.Service

	ResultsApp *results.App
	Reminders  *reminders.Scheduler
}

func setupServices(cfg *config.Config, store docstore.Store, publisher events.Publisher, collector metrics.Collector, clock clockwork.Clock) *Services {
	// Wire up dependency injection chain
	// Store → Repository layer → App layer → Service layer
	httpClient := &http.Client{Timeout: 30 * time.Second}

	// Identity
	var auth identity.Authenticator = identity.HeaderAuthenticator{}
	var verifier users.TokenVerifier
	if !cfg.Identity.Disabled {
		v := identity.NewVerifier(cfg.Identity.ProjectID, identity.NewCertSource(identity.GoogleCertsURL, httpClient, clock), clock)
		auth, verifier = v, v
	} else {
		log.Warn().Msg("authentication disabled, trusting " + identity.DevUserHeader)
	}
	toolkit := identitytoolkit.NewClient(identitytoolkit.DefaultBaseURL, cfg.Identity.APIKey, clients.WithHTTPClient(httpClient))

	// Users
	usersApp := users.NewApp(users.NewRepository(store), toolkit, verifier, clock)

	// Feed
	feed := footballdata.NewClient(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.Competition,
		clients.WithHTTPClient(httpClient),
		clients.WithRateLimit(cfg.Feed.RequestsPerMinute),
		clients.WithObserver(func(endpoint string, status int, d time.Duration) {
			collector.RecordFeedRequest(feedEndpoint(endpoint), status, d)
		}),
	)

	// Leagues
	leaguesApp := leagues.NewApp(leagues.NewRepository(store), publisher, collector, clock)

	// Results and life adjustment
	predictionsRepo := predictions.NewRepository(store)
	processor := adjustment.NewProcessor(leaguesApp, predictionsRepo, clock)
	resultsApp := results.NewApp(results.NewRepository(store), feed, processor, clock)

	// Predictions
	predictionsApp := predictions.NewApp(predictionsRepo, leaguesApp, resultsApp, clock)

	// Teams
	teamsApp := teams.NewApp(teams.NewRepository(store), feed)

	// Reminders
	scheduler := reminders.NewScheduler(resultsApp, reminders.NewRepository(store), setupMailer(cfg), clock,
		reminders.WithLocation(cfg.Location()),
		reminders.WithFrontEndURL(cfg.Schedule.FrontEndURL),
		reminders.WithPublisher(publisher),
		reminders.WithMetrics(collector),
	)

	return &Services{
		Auth:        auth,
		Users:       users.NewService(usersApp),
		Leagues:     leagues.NewService(leaguesApp),
		Predictions: predictions.NewService(predictionsApp),
		Results:     results.NewService(resultsApp, scheduler),
		Teams:       teams.NewService(teamsApp),
		ResultsApp:  resultsApp,
		Reminders:   scheduler,
	}
}

func setupMailer(cfg *config.Config) notify.Mailer {
	if cfg.Mail.Host == "" {
		log.Warn().Msg("SMTP not configured, reminders are logged instead of sent")
		return notify.LogMailer{}
	}
	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to configure SMTP, reminders are logged instead of sent")
		return notify.LogMailer{}
	}
	return mailer
}

// feedEndpoint strips ids and query strings so metric labels stay bounded.
func feedEndpoint(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return parts[len(parts)-1]
}
