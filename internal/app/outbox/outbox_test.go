package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/app/outbox"
	"reservaja/internal/domain/booking"
)

type fakeStore struct {
	added []outbox.Record
	err   error
}

func (s *fakeStore) Add(ctx context.Context, rec outbox.Record) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, rec)
	return nil
}

func TestSinkStagesEvents(t *testing.T) {
	store := &fakeStore{}
	sink := outbox.Sink{Store: store}
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	sink.Publish(context.Background(),
		booking.BookingCreated{BookingID: "b1", ProductID: "p1", TotalAmount: 600, At: at},
		booking.BookingConfirmed{BookingID: "b1", At: at},
	)

	require.Len(t, store.added, 2)
	first := store.added[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "booking.created", first.Name)
	assert.Equal(t, "b1", first.AggregateID)
	assert.Equal(t, at, first.OccurredAt)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(first.Payload, &payload))
	assert.Equal(t, 600.0, payload["TotalAmount"])

	assert.Equal(t, "booking.confirmed", store.added[1].Name)
}

func TestSinkSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("down")}
	sink := outbox.Sink{Store: store}
	sink.Publish(context.Background(), booking.BookingCreated{BookingID: "b1"})
	assert.Empty(t, store.added)
}

func TestSinkWithoutStoreIsNoop(t *testing.T) {
	outbox.Sink{}.Publish(context.Background(), booking.BookingCreated{BookingID: "b1"})
}
