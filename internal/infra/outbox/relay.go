package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrRelayNotConfigured = errors.New("outbox: relay missing dependencies")

// Publisher sends a staged payload to the broker. The kafka event publisher
// satisfies this.
type Publisher interface {
	PublishRaw(ctx context.Context, key, name string, payload []byte) error
}

// RecordStore is the slice of the store the relay drains.
type RecordStore interface {
	Claim(ctx context.Context, relayID string) (*ClaimedRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Relay drains staged booking events to the broker on an interval, retrying
// failed deliveries with backoff. Records are published keyed by booking id,
// the same wire format the direct publisher uses.
type Relay struct {
	Store    RecordStore
	Producer Publisher
	Logger   *slog.Logger
	Interval time.Duration
	ID       string
	Backoff  []time.Duration
}

func (r *Relay) Run(ctx context.Context) error {
	if r.Store == nil || r.Producer == nil {
		return ErrRelayNotConfigured
	}
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain processes every due record before going back to sleep. A claim error
// is transient storage trouble; the relay logs it and picks up again on the
// next tick rather than stopping.
func (r *Relay) drain(ctx context.Context) {
	for {
		claimed, err := r.Store.Claim(ctx, r.relayID())
		if err != nil {
			if r.Logger != nil {
				r.Logger.Warn("outbox claim failed", "error", err)
			}
			return
		}
		if claimed == nil {
			return
		}
		r.deliver(ctx, claimed)
	}
}

func (r *Relay) deliver(ctx context.Context, claimed *ClaimedRecord) {
	rec := claimed.Record
	if err := r.Producer.PublishRaw(ctx, rec.AggregateID, rec.Name, rec.Payload); err != nil {
		if r.Logger != nil {
			r.Logger.Warn("event delivery failed", "event", rec.Name, "aggregate", rec.AggregateID, "attempts", claimed.Attempts, "error", err)
		}
		_ = r.Store.MarkFailed(ctx, rec.ID, r.nextRetry(claimed.Attempts), err.Error())
		return
	}
	if err := r.Store.MarkSent(ctx, rec.ID); err != nil && r.Logger != nil {
		r.Logger.Warn("event sent but not marked", "event", rec.Name, "id", rec.ID, "error", err)
	}
}

func (r *Relay) relayID() string {
	if r.ID != "" {
		return r.ID
	}
	return uuid.NewString()
}

func (r *Relay) interval() time.Duration {
	if r.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return r.Interval
}

func (r *Relay) nextRetry(attempts int) time.Time {
	if attempts < len(r.Backoff) {
		return time.Now().Add(r.Backoff[attempts])
	}
	if len(r.Backoff) > 0 {
		return time.Now().Add(r.Backoff[len(r.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}
