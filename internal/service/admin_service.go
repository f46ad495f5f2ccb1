package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/events"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// adminService implements AdminService.
type adminService struct {
	orders      repository.OrderRepository
	menu        repository.MenuRepository
	machine     *lifecycle.Machine
	clock       lifecycle.Clock
	transitions transitioner
	logger      zerolog.Logger
}

// NewAdminService creates a new admin service. A nil clock means lifecycle.SystemClock.
func NewAdminService(
	orders repository.OrderRepository,
	menu repository.MenuRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	machine *lifecycle.Machine,
	clock lifecycle.Clock,
	logger zerolog.Logger,
) AdminService {
	if clock == nil {
		clock = lifecycle.SystemClock
	}
	if m == nil {
		m = metrics.New()
	}
	if machine == nil {
		machine = lifecycle.NewMachine(lifecycle.NewPolicy(lifecycle.DefaultCancellationWindow))
	}

	logger = logger.With().Str("service", "admin").Logger()
	return &adminService{
		orders:      orders,
		menu:        menu,
		machine:     machine,
		clock:       clock,
		transitions: transitioner{orders: orders, publisher: publisher, metrics: m, logger: logger},
		logger:      logger,
	}
}

func (s *adminService) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error) {
	views, err := s.orders.ListAll(ctx, status)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return views, nil
}

// TransitionOrder moves an order along the status graph. Admins are not
// bound by the cancellation window.
func (s *adminService) TransitionOrder(ctx context.Context, orderID uuid.UUID, to model.OrderStatus) (*model.Order, error) {
	if _, ok := model.ParseOrderStatus(string(to)); !ok {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	now := s.clock()
	if err := s.machine.Check(order.Status, to, model.RoleAdmin, order.CreatedAt, now); err != nil {
		s.transitions.reject(order, to, model.RoleAdmin, err)
		return nil, err
	}

	return s.transitions.apply(ctx, repository.StatusUpdate{
		OrderID: order.ID,
		From:    order.Status,
		To:      to,
		At:      now,
	}, model.RoleAdmin)
}

func validMenuItem(item *model.MenuItem) bool {
	return item != nil &&
		strings.TrimSpace(item.ID) != "" &&
		strings.TrimSpace(item.Name) != "" &&
		item.CategoryID > 0 &&
		item.Price >= 0
}

func (s *adminService) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	if !validMenuItem(item) {
		return model.ErrInvalidMenuItem
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.clock()
	}

	if err := s.menu.Create(ctx, item); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to create menu item")
		return err
	}

	s.logger.Info().Str("item_id", item.ID).Msg("menu item created")
	return nil
}

func (s *adminService) UpdateMenuItem(ctx context.Context, item *model.MenuItem) error {
	if !validMenuItem(item) {
		return model.ErrInvalidMenuItem
	}

	if err := s.menu.Update(ctx, item); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to update menu item")
		return err
	}

	s.logger.Info().Str("item_id", item.ID).Msg("menu item updated")
	return nil
}

// DeleteMenuItem removes an item. Items referenced by orders are kept.
func (s *adminService) DeleteMenuItem(ctx context.Context, id string) error {
	if id == "" {
		return model.ErrMenuItemNotFound
	}

	if err := s.menu.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("item_id", id).Msg("failed to delete menu item")
		return err
	}

	s.logger.Info().Str("item_id", id).Msg("menu item deleted")
	return nil
}

// normalizeCategory trims the name in place and reports whether it is usable.
func normalizeCategory(c *model.Category) bool {
	if c == nil {
		return false
	}
	c.Name = strings.TrimSpace(c.Name)
	n := utf8.RuneCountInString(c.Name)
	return n > 0 && n <= model.MaxCategoryNameLength
}

func (s *adminService) CreateCategory(ctx context.Context, category *model.Category) error {
	if !normalizeCategory(category) {
		return model.ErrInvalidCategory
	}

	if err := s.menu.CreateCategory(ctx, category); err != nil {
		s.logger.Warn().Err(err).Str("name", category.Name).Msg("failed to create category")
		return err
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return nil
}

func (s *adminService) UpdateCategory(ctx context.Context, category *model.Category) error {
	if !normalizeCategory(category) {
		return model.ErrInvalidCategory
	}
	if category.ID <= 0 {
		return model.ErrCategoryNotFound
	}

	if err := s.menu.UpdateCategory(ctx, category); err != nil {
		s.logger.Warn().Err(err).Int64("category_id", category.ID).Msg("failed to update category")
		return err
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category updated")
	return nil
}

func (s *adminService) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrCategoryNotFound
	}

	if err := s.menu.DeleteCategory(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return err
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}
