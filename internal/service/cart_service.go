package service

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type cartService struct {
	storage cart.Storage
	menu    repository.MenuRepository
	logger  zerolog.Logger
}

// NewCartService creates a cart service over the given storage.
func NewCartService(storage cart.Storage, menu repository.MenuRepository, logger zerolog.Logger) CartService {
	return &cartService{
		storage: storage,
		menu:    menu,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) open(ctx context.Context, userID string) (*cart.Store, error) {
	if userID == "" {
		return nil, model.ErrUnauthenticated
	}
	return cart.NewStore(ctx, s.storage, userID)
}

func response(store *cart.Store) *model.CartResponse {
	return &model.CartResponse{Items: store.Items(), Total: store.Total()}
}

func (s *cartService) Get(ctx context.Context, userID string) (*model.CartResponse, error) {
	store, err := s.open(ctx, userID)
	if err != nil {
		return nil, err
	}
	return response(store), nil
}

func (s *cartService) AddItem(ctx context.Context, userID string, req model.CartItemRequest) (*model.CartResponse, error) {
	if req.Quantity > model.MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}

	store, err := s.open(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.menu.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	line := model.CartLineItem{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  qty,
		ImageRef:  item.ImageRef,
	}
	if err := store.AddItem(ctx, line, qty); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("item_id", item.ID).
		Int("quantity", qty).
		Msg("item added to cart")
	return response(store), nil
}

func (s *cartService) SetQuantity(ctx context.Context, userID, itemID string, qty int) (*model.CartResponse, error) {
	if !model.ValidQuantity(qty) {
		return nil, model.ErrInvalidQuantity
	}

	store, err := s.open(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := store.SetQuantity(ctx, itemID, qty); err != nil {
		return nil, err
	}
	return response(store), nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) (*model.CartResponse, error) {
	store, err := s.open(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := store.RemoveItem(ctx, itemID); err != nil {
		return nil, err
	}
	return response(store), nil
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	store, err := s.open(ctx, userID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}
