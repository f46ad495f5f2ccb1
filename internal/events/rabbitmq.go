package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ExchangeType is the AMQP exchange kind; consumers bind by event type pattern.
const ExchangeType = "topic"

type rabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewRabbitMQPublisher dials url and declares a durable topic exchange.
func NewRabbitMQPublisher(url, exchange string, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &rabbitPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With().Str("publisher", "rabbitmq").Str("exchange", exchange).Logger(),
	}, nil
}

func amqpPublishing(env Envelope) (amqp.Publishing, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode envelope: %w", err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.EventID,
		CorrelationId: env.CorrelationID,
		Timestamp:     env.OccurredAt,
		Type:          env.EventType,
		AppId:         env.Producer,
		Body:          body,
	}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, env Envelope) error {
	msg, err := amqpPublishing(env)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,    // exchange
		env.EventType, // routing key
		false,         // mandatory
		false,         // immediate
		msg,
	)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", env.EventType).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", env.EventType, err)
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}
