package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestEmitPublishesEncodedPayload(t *testing.T) {
	pub := &recordingPublisher{}
	at := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	Emit(context.Background(), pub, TypeJoinAccepted, "l1", at, MembershipPayload{LeagueID: "l1", UserID: "u2", OccurredAt: at})

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, TypeJoinAccepted, e.Type)
	assert.Equal(t, "l1", e.AggregateID)
	assert.NotEmpty(t, e.ID.String())

	var p MembershipPayload
	require.NoError(t, json.Unmarshal(e.Payload, &p))
	assert.Equal(t, "u2", p.UserID)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, TypeReminderFired, "7", time.Now(), ReminderPayload{Matchday: 7})
	})
	Emit(context.Background(), nil, TypeReminderFired, "7", time.Now(), ReminderPayload{})
	assert.Len(t, pub.events, 1)
}

func TestEnvelopeShape(t *testing.T) {
	e, err := New(TypeReminderArmed, "12", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), ReminderPayload{Matchday: 12})
	require.NoError(t, err)

	data, err := json.Marshal(envelope(e))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeReminderArmed, got["eventType"])
	assert.Equal(t, "12", got["aggregateId"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["timestamp"])
	assert.Equal(t, float64(12), got["payload"].(map[string]any)["matchday"])
}
