package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is one domain event ready for the bus
type Event struct {
	ID          uuid.UUID
	Type        string
	AggregateID string
	OccurredAt  time.Time
	Payload     json.RawMessage
}

// New builds an event with a fresh id and an encoded payload.
func New(eventType, aggregateID string, at time.Time, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  at,
		Payload:     data,
	}, nil
}

// Publisher delivers events to the message bus
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops events. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emit builds and publishes an event, logging instead of failing: the
// state change that produced it has already committed.
func Emit(ctx context.Context, p Publisher, eventType, aggregateID string, at time.Time, payload any) {
	if p == nil {
		return
	}
	event, err := New(eventType, aggregateID, at, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_type", eventType).
			Str("aggregate_id", aggregateID).
			Msg("failed to publish event")
	}
}
