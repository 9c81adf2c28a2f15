package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/domain/booking"
)

func TestProducerConfigIsValid(t *testing.T) {
	cfg := newProducerConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Idempotent)
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, 1, cfg.Net.MaxOpenRequests)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *EventPublisher
	ctx := context.Background()
	p.Publish(ctx, booking.BookingCreated{BookingID: "b1"})
	assert.Error(t, p.PublishRaw(ctx, "b1", "booking.created", []byte(`{}`)))
	assert.NoError(t, p.Close())
}
