package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/events"
	"storefront/internal/idempotency"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderDeps collects the collaborators of the order service.
type OrderDeps struct {
	Orders    repository.OrderRepository
	Carts     cart.Storage
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Machine   *lifecycle.Machine

	// Idempotency is optional. Without it every submission is fresh.
	Idempotency idempotency.Store

	// Clock defaults to lifecycle.SystemClock.
	Clock lifecycle.Clock

	// CountdownTick defaults to lifecycle.DefaultCountdownTick.
	CountdownTick time.Duration
}

// orderService implements OrderService.
type orderService struct {
	orders    repository.OrderRepository
	carts     cart.Storage
	idem      idempotency.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	machine   *lifecycle.Machine
	clock     lifecycle.Clock
	tick      time.Duration
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDeps, logger zerolog.Logger) OrderService {
	if deps.Clock == nil {
		deps.Clock = lifecycle.SystemClock
	}
	if deps.CountdownTick <= 0 {
		deps.CountdownTick = lifecycle.DefaultCountdownTick
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Machine == nil {
		deps.Machine = lifecycle.NewMachine(lifecycle.NewPolicy(lifecycle.DefaultCancellationWindow))
	}

	return &orderService{
		orders:    deps.Orders,
		carts:     deps.Carts,
		idem:      deps.Idempotency,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		machine:   deps.Machine,
		clock:     deps.Clock,
		tick:      deps.CountdownTick,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Submit validates the draft against the cart and writes one row per line
// item in a single transaction. On success the cart is emptied. On failure
// the cart is left exactly as it was.
func (s *orderService) Submit(ctx context.Context, userID string, draft model.DraftOrder) (result *model.SubmitResult, err error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}

	if key := draft.IdempotencyKey; key != "" && s.idem != nil {
		existing, reserved, rErr := s.idem.Reserve(ctx, userID, key)
		if rErr != nil {
			if errors.Is(rErr, model.ErrDuplicateRequest) {
				s.metrics.CheckoutFailed("duplicate")
				return nil, rErr
			}
			return nil, &model.SubmissionError{Cause: rErr}
		}
		if !reserved {
			s.logger.Info().
				Str("user_id", userID).
				Str("batch_id", existing.BatchID.String()).
				Msg("checkout replayed from idempotency key")
			return existing, nil
		}

		defer func() {
			if err != nil {
				if relErr := s.idem.Release(context.WithoutCancel(ctx), userID, key); relErr != nil {
					s.logger.Error().Err(relErr).Str("user_id", userID).Msg("failed to release idempotency key")
				}
				return
			}
			if cErr := s.idem.Complete(context.WithoutCancel(ctx), userID, key, result); cErr != nil {
				s.logger.Error().Err(cErr).Str("user_id", userID).Msg("failed to record idempotency result")
			}
		}()
	}

	store, err := cart.NewStore(ctx, s.carts, userID)
	if err != nil {
		s.metrics.CheckoutFailed("cart")
		return nil, &model.SubmissionError{Cause: err}
	}
	items := store.Items()

	if err = checkout.Validate(draft, items); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("checkout rejected")
		s.metrics.CheckoutFailed("validation")
		return nil, err
	}

	now := s.clock().UTC().Truncate(time.Microsecond)
	batchID := uuid.New()
	aux := checkout.NormalizeAuxInfo(draft)

	orders := make([]model.Order, len(items))
	for i, it := range items {
		orders[i] = model.Order{
			ID:              uuid.New(),
			BatchID:         batchID,
			UserID:          userID,
			ItemID:          it.ItemID,
			Quantity:        it.Quantity,
			CreatedAt:       now,
			UpdatedAt:       now,
			Status:          model.StatusPreparing,
			DeliveryAddress: strings.TrimSpace(draft.DeliveryAddress),
			PaymentMethod:   draft.PaymentMethod,
			PaymentAuxInfo:  aux,
		}
	}

	if err = s.insert(ctx, orders); err != nil {
		if errors.Is(err, model.ErrMenuItemNotFound) {
			s.metrics.CheckoutFailed("unknown_item")
			return nil, err
		}
		s.metrics.CheckoutFailed("persistence")
		return nil, &model.SubmissionError{Cause: err}
	}

	// Work after commit outlives the request.
	after := context.WithoutCancel(ctx)
	if clearErr := store.Clear(after); clearErr != nil {
		s.logger.Error().Err(clearErr).Str("user_id", userID).Msg("orders placed but cart could not be cleared")
	}

	total := cart.Total(items)
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	result = &model.SubmitResult{
		BatchID:   batchID,
		OrderIDs:  ids,
		CreatedAt: now,
		Total:     total,
	}

	s.metrics.CheckoutSucceeded(len(orders), total)
	s.publishPlaced(after, userID, draft.PaymentMethod, items, result)

	s.logger.Info().
		Str("user_id", userID).
		Str("batch_id", batchID.String()).
		Int("rows", len(orders)).
		Int64("total", total).
		Msg("checkout submitted")

	return result, nil
}

// insert writes every row of a batch inside one transaction.
func (s *orderService) insert(ctx context.Context, orders []model.Order) (err error) {
	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to submit orders: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orders.CreateOrders(ctx, tx, orders); err != nil {
		s.logger.Error().Err(err).Int("rows", len(orders)).Msg("failed to create orders")
		return fmt.Errorf("failed to submit orders: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to submit orders: %w", err)
	}
	return nil
}

func (s *orderService) History(ctx context.Context, userID string, filter model.HistoryFilter) (*model.HistoryResponse, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	switch filter {
	case model.FilterAll, model.FilterCompleted, model.FilterInProgress, model.FilterCancelled:
	default:
		filter = model.FilterAll
	}

	views, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	now := s.clock()
	policy := s.machine.Policy()
	counts := map[model.HistoryFilter]int{
		model.FilterAll:        0,
		model.FilterCompleted:  0,
		model.FilterInProgress: 0,
		model.FilterCancelled:  0,
	}

	selected := make([]model.OrderView, 0, len(views))
	for _, v := range views {
		for f := range counts {
			if f.Matches(v.Status) {
				counts[f]++
			}
		}
		if !filter.Matches(v.Status) {
			continue
		}

		if !v.Status.IsTerminal() {
			if remaining, ok := policy.Remaining(v.CreatedAt, now); ok {
				v.Cancelable = true
				v.Remaining = lifecycle.FormatRemaining(remaining)
			}
		}
		selected = append(selected, v)
	}

	return &model.HistoryResponse{
		Filter: filter,
		Counts: counts,
		Orders: selected,
	}, nil
}

func (s *orderService) Cancel(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := s.machine.Check(order.Status, model.StatusCancelled, model.RoleCustomer, order.CreatedAt, now); err != nil {
		s.transitions().reject(order, model.StatusCancelled, model.RoleCustomer, err)
		return nil, err
	}

	// The window is checked again in SQL so a request that raced past
	// the deadline cannot land.
	cutoff := now.Add(-s.machine.Policy().Window)
	return s.transitions().apply(ctx, repository.StatusUpdate{
		OrderID:      order.ID,
		From:         order.Status,
		To:           model.StatusCancelled,
		At:           now,
		UserID:       userID,
		CreatedAfter: &cutoff,
	}, model.RoleCustomer)
}

func (s *orderService) transitions() transitioner {
	return transitioner{orders: s.orders, publisher: s.publisher, metrics: s.metrics, logger: s.logger}
}

func (s *orderService) Countdown(ctx context.Context, userID string, orderID uuid.UUID) (<-chan time.Duration, error) {
	order, err := s.owned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, model.ErrAlreadyTerminal
	}
	return s.machine.Policy().Countdown(ctx, order.CreatedAt, s.clock, s.tick), nil
}

// owned loads an order and hides rows that belong to someone else.
func (s *orderService) owned(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) publishPlaced(ctx context.Context, userID string, method model.PaymentMethod, items []model.CartLineItem, result *model.SubmitResult) {
	if s.publisher == nil {
		return
	}

	lines := make([]events.OrderLine, len(items))
	for i, it := range items {
		lines[i] = events.OrderLine{
			OrderID:   result.OrderIDs[i],
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	env, err := events.NewEnvelope(events.EventOrderPlaced, result.BatchID.String(), events.OrderPlacedPayload{
		BatchID:       result.BatchID,
		UserID:        userID,
		PaymentMethod: method,
		Lines:         lines,
		Total:         result.Total,
		CreatedAt:     result.CreatedAt,
	}, result.CreatedAt)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("batch_id", result.BatchID.String()).Msg("failed to publish order placed event")
	}
}
