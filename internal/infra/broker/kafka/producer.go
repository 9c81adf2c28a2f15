package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"reservaja/internal/domain/shared/events"
)

const bookingEventsTopic = "booking.events"

// EventPublisher writes booking domain events to kafka, keyed by booking id
// so one booking's events stay ordered within a partition.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// newProducerConfig builds the sarama config for the booking event producer.
// Idempotent production requires at most one in-flight request per broker.
func newProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

func NewEventPublisher(brokers []string, topicPrefix string, logger *slog.Logger) (*EventPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, newProducerConfig())
	if err != nil {
		return nil, err
	}
	return &EventPublisher{
		producer: producer,
		topic:    topicPrefix + bookingEventsTopic,
		logger:   logger,
	}, nil
}

// Publish sends each event, logging and continuing on individual failures so
// event delivery never blocks the booking flow.
func (p *EventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) {
	if p == nil || p.producer == nil {
		return
	}
	for _, event := range evts {
		payload, err := json.Marshal(event)
		if err != nil {
			if p.logger != nil {
				p.logger.Error("event encode failed", "event", event.EventName(), "error", err)
			}
			continue
		}
		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.AggregateID()),
			Value: sarama.ByteEncoder(payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte("event"), Value: []byte(event.EventName())},
			},
		}
		if _, _, err := p.producer.SendMessage(msg); err != nil && p.logger != nil {
			p.logger.Error("event publish failed", "event", event.EventName(), "aggregate", event.AggregateID(), "error", err)
		}
	}
}

// PublishRaw sends an already-encoded event payload. Unlike Publish it
// reports the failure, so the outbox relay can schedule a retry.
func (p *EventPublisher) PublishRaw(ctx context.Context, key, name string, payload []byte) error {
	if p == nil || p.producer == nil {
		return sarama.ErrClosedClient
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(name)},
		},
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

func (p *EventPublisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
