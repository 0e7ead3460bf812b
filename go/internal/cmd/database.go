package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/survivor/go/internal/config"
	"github.com/mcdev12/survivor/go/internal/docstore"
	"github.com/mcdev12/survivor/go/internal/events"
	"github.com/rs/zerolog/log"
)

func setupStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err := docstore.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("connected to postgres")
		return store, nil
	case config.DriverFirestore:
		store, err := docstore.NewFirestoreStore(ctx, cfg.Store.FirestoreProjectID)
		if err != nil {
			return nil, err
		}
		log.Info().Str("project_id", cfg.Store.FirestoreProjectID).Msg("connected to firestore")
		return store, nil
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return docstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// setupPublisher connects to JetStream when NATS is configured. Events are
// best effort, so a failed connection falls back to dropping them.
func setupPublisher(ctx context.Context, cfg *config.Config) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NopPublisher{}
	}
	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	jsCfg.StreamName = cfg.NATS.StreamName
	jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

	publisher, err := events.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		log.Error().Err(err).Str("nats_url", cfg.NATS.URL).Msg("failed to connect to NATS, events disabled")
		return events.NopPublisher{}
	}
	log.Info().Str("nats_url", cfg.NATS.URL).Str("stream", jsCfg.StreamName).Msg("publishing league events")
	return publisher
}
