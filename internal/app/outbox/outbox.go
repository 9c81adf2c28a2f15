package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reservaja/internal/domain/shared/events"
)

// Record is a staged domain event awaiting delivery to the broker.
type Record struct {
	ID          string
	Name        string
	AggregateID string
	Payload     []byte
	OccurredAt  time.Time
}

// Store persists staged records until a relay drains them.
type Store interface {
	Add(ctx context.Context, rec Record) error
}

// Encode serializes a domain event into a staged record.
func Encode(ev events.DomainEvent) (Record, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:          uuid.NewString(),
		Name:        ev.EventName(),
		AggregateID: ev.AggregateID(),
		Payload:     payload,
		OccurredAt:  ev.OccurredAt(),
	}, nil
}

// Sink stages domain events in a store instead of publishing them inline,
// so a broker outage never loses booking events. It keeps the same
// fire-and-forget contract as the direct publisher: staging failures are
// logged, never surfaced to the request.
type Sink struct {
	Store  Store
	Logger *slog.Logger
}

func (s Sink) Publish(ctx context.Context, evts ...events.DomainEvent) {
	if s.Store == nil {
		return
	}
	for _, event := range evts {
		rec, err := Encode(event)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Error("event encode failed", "event", event.EventName(), "error", err)
			}
			continue
		}
		if err := s.Store.Add(ctx, rec); err != nil && s.Logger != nil {
			s.Logger.Error("event staging failed", "event", event.EventName(), "aggregate", event.AggregateID(), "error", err)
		}
	}
}
