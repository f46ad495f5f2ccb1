package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type kafkaPublisher struct {
	w      *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher writes envelopes to topic, keyed by correlation ID.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration, logger zerolog.Logger) Publisher {
	return &kafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: timeout,
		},
		logger: logger.With().Str("publisher", "kafka").Str("topic", topic).Logger(),
	}
}

func kafkaMessage(env Envelope) (kafka.Message, error) {
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode envelope: %w", err)
	}

	return kafka.Message{
		Key:   PartitionKey(env),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
		},
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	msg, err := kafkaMessage(env)
	if err != nil {
		return err
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("event_type", env.EventType).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", env.EventType, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.w.Close()
}
