package events

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

type nopPublisher struct {
	logger zerolog.Logger
}

// NewNopPublisher discards events, logging them at debug level.
func NewNopPublisher(logger zerolog.Logger) Publisher {
	return &nopPublisher{logger: logger.With().Str("publisher", "nop").Logger()}
}

func (p *nopPublisher) Publish(_ context.Context, env Envelope) error {
	p.logger.Debug().
		Str("event_type", env.EventType).
		Str("correlation_id", env.CorrelationID).
		Msg("event discarded")
	return nil
}

func (p *nopPublisher) Close() error { return nil }

// New returns the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverKafka:
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic, cfg.Timeout, logger), nil
	case config.EventsDriverNATS:
		return NewNATSPublisher(cfg.NATSURL, cfg.Topic, logger)
	case config.EventsDriverRabbitMQ:
		return NewRabbitMQPublisher(cfg.AMQPURL, cfg.Topic, logger)
	case config.EventsDriverNone, "":
		return NewNopPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown events driver: %s", cfg.Driver)
	}
}
