package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menuRepo repository.MenuRepository, logger zerolog.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
}

func (s *menuService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.menuRepo.ListCategories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListMenu returns the menu, restricted to one category when categoryID is set.
func (s *menuService) ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error) {
	items, err := s.menuRepo.ListMenu(ctx, categoryID)
	if err != nil {
		event := s.logger.Error().Err(err)
		if categoryID != nil {
			event = event.Int64("category_id", *categoryID)
		}
		event.Msg("failed to list menu")
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}

	s.logger.Debug().Int("count", len(items)).Msg("retrieved menu")
	return items, nil
}

// GetByID retrieves a single menu item by ID.
func (s *menuService) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	if id == "" {
		s.logger.Warn().Msg("menu item ID is empty")
		return nil, model.ErrMenuItemNotFound
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", id).Msg("failed to get menu item by ID")
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	if item == nil {
		s.logger.Debug().Str("item_id", id).Msg("menu item not found")
		return nil, model.ErrMenuItemNotFound
	}

	return item, nil
}
