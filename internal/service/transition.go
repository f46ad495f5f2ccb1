package service

import (
	"context"
	"fmt"

	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// transitioner applies status changes that already passed the state machine.
type transitioner struct {
	orders    repository.OrderRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// apply runs a compare-and-set update. A row that moved underneath the
// caller yields model.ErrStaleOrder.
func (t transitioner) apply(ctx context.Context, upd repository.StatusUpdate, role model.Role) (*model.Order, error) {
	from, to := string(upd.From), string(upd.To)

	updated, err := t.orders.UpdateStatus(ctx, upd)
	if err != nil {
		t.metrics.Transition(from, to, string(role), "error")
		t.logger.Error().Err(err).Str("order_id", upd.OrderID.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if updated == nil {
		t.metrics.Transition(from, to, string(role), "stale")
		t.logger.Warn().
			Str("order_id", upd.OrderID.String()).
			Str("from", from).
			Str("to", to).
			Msg("order changed before transition applied")
		return nil, model.ErrStaleOrder
	}

	t.metrics.Transition(from, to, string(role), "applied")
	t.logger.Info().
		Str("order_id", upd.OrderID.String()).
		Str("from", from).
		Str("to", to).
		Str("role", string(role)).
		Msg("order status changed")

	t.publish(ctx, updated, upd.From, role)
	return updated, nil
}

// reject records a transition refused by the state machine.
func (t transitioner) reject(order *model.Order, to model.OrderStatus, role model.Role, err error) {
	t.metrics.Transition(string(order.Status), string(to), string(role), "rejected")
	t.logger.Warn().
		Err(err).
		Str("order_id", order.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(to)).
		Str("role", string(role)).
		Msg("transition rejected")
}

// publish emits the status change. The transition is already committed,
// so delivery failures are only logged.
func (t transitioner) publish(ctx context.Context, order *model.Order, from model.OrderStatus, role model.Role) {
	if t.publisher == nil {
		return
	}

	env, err := events.NewEnvelope(events.EventOrderStatusChanged, order.BatchID.String(), events.StatusChangedPayload{
		OrderID: order.ID,
		BatchID: order.BatchID,
		UserID:  order.UserID,
		From:    from,
		To:      order.Status,
		By:      role,
	}, order.UpdatedAt)
	if err == nil {
		err = t.publisher.Publish(ctx, env)
	}
	if err != nil {
		t.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish status changed event")
	}
}
