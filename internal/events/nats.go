package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type natsPublisher struct {
	nc     *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to url and publishes on {prefix}.{event_type}.
func NewNATSPublisher(url, prefix string, logger zerolog.Logger) (Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(Producer),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &natsPublisher{
		nc:     nc,
		prefix: prefix,
		logger: logger.With().Str("publisher", "nats").Logger(),
	}, nil
}

func natsSubject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// Publish checks ctx first; core NATS publish does not take a context.
func (p *natsPublisher) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	subject := natsSubject(p.prefix, env.EventType)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", env.EventType, err)
	}
	return nil
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}
