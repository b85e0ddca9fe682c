package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/config"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
	"github.com/kippu-app/kippu-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		TicketsTopic: "kippu-ticket-events",
		PointsTopic:  "kippu-point-events",
	})
	if err != nil {
		t.Fatalf("NewEventRegistry: %v", err)
	}
	return reg
}

func envelopeFor(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{PointsTopic: "p"}); err == nil {
		t.Fatal("expected tickets topic error")
	}
	if _, err := NewEventRegistry(config.PubSubConfig{TicketsTopic: "t"}); err == nil {
		t.Fatal("expected points topic error")
	}
}

func TestResolveTicketIssued(t *testing.T) {
	reg := testRegistry(t)
	ticketID := uuid.New()

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventTicketIssued,
		AggregateType: enums.AggregateTicket,
		AggregateID:   ticketID,
		Payload: envelopeFor(t, payloads.TicketIssuedEvent{
			TicketID: ticketID,
			UnitSeq:  2,
			Category: enums.TicketCategoryAdmission,
		}),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "kippu-ticket-events" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.TicketIssuedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.TicketID != ticketID || payload.UnitSeq != 2 {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestResolvePointsCreditedRoutesToPointsTopic(t *testing.T) {
	reg := testRegistry(t)
	userID := uuid.New()

	event := models.OutboxEvent{
		EventType:     enums.EventPointsCredited,
		AggregateType: enums.AggregateUserProfile,
		AggregateID:   userID,
		Payload: envelopeFor(t, payloads.PointsCreditedEvent{
			UserProfileID: userID,
			Action:        enums.PointActionSignup,
			Amount:        500,
			BalanceAfter:  500,
		}),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "kippu-point-events" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
}

func TestResolveRejectsBadRows(t *testing.T) {
	reg := testRegistry(t)

	cases := []struct {
		name  string
		event models.OutboxEvent
	}{
		{
			name: "unsupported event type",
			event: models.OutboxEvent{
				EventType:     enums.OutboxEventType("mystery"),
				AggregateType: enums.AggregateTicket,
				AggregateID:   uuid.New(),
			},
		},
		{
			name: "aggregate mismatch",
			event: models.OutboxEvent{
				EventType:     enums.EventTicketIssued,
				AggregateType: enums.AggregateUserProfile,
				AggregateID:   uuid.New(),
			},
		},
		{
			name: "missing aggregate id",
			event: models.OutboxEvent{
				EventType:     enums.EventTicketIssued,
				AggregateType: enums.AggregateTicket,
			},
		},
		{
			name: "malformed envelope",
			event: models.OutboxEvent{
				EventType:     enums.EventTicketIssued,
				AggregateType: enums.AggregateTicket,
				AggregateID:   uuid.New(),
				Payload:       json.RawMessage(`{"data":`),
			},
		},
		{
			name: "null data",
			event: models.OutboxEvent{
				EventType:     enums.EventTicketIssued,
				AggregateType: enums.AggregateTicket,
				AggregateID:   uuid.New(),
				Payload:       json.RawMessage(`{"version":1,"eventId":"x","data":null}`),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Resolve(tc.event)
			if err == nil {
				t.Fatal("expected error")
			}
			var nonRetry NonRetryableError
			if !errors.As(err, &nonRetry) {
				t.Fatalf("expected non-retryable error, got %v", err)
			}
		})
	}
}
