// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// Event types. They double as NATS subject suffixes and AMQP routing keys.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// Producer identifies this service in every envelope.
const Producer = "storefront-api"

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // batch_id or order_id
	Payload       json.RawMessage `json:"payload"`
}

// OrderLine is one row of a placed batch.
type OrderLine struct {
	OrderID   uuid.UUID `json:"order_id"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

// OrderPlacedPayload is emitted once per successful checkout.
type OrderPlacedPayload struct {
	BatchID       uuid.UUID           `json:"batch_id"`
	UserID        string              `json:"user_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Lines         []OrderLine         `json:"lines"`
	Total         int64               `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
}

// StatusChangedPayload is emitted for every applied transition.
type StatusChangedPayload struct {
	OrderID uuid.UUID         `json:"order_id"`
	BatchID uuid.UUID         `json:"batch_id"`
	UserID  string            `json:"user_id"`
	From    model.OrderStatus `json:"from"`
	To      model.OrderStatus `json:"to"`
	By      model.Role        `json:"by"`
}

// Publisher delivers envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// NewEnvelope builds a version 1 envelope around payload.
func NewEnvelope(eventType, correlationID string, payload any, occurredAt time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    occurredAt.UTC(),
		Producer:      Producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// PartitionKey keeps all events of one batch or order in order on partitioned brokers.
func PartitionKey(env Envelope) []byte {
	if env.CorrelationID != "" {
		return []byte(env.CorrelationID)
	}
	return []byte(env.EventID)
}
