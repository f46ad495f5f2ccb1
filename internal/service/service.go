package service

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// MenuService defines read access to the catalogue.
type MenuService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error)
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)
}

// CartService defines operations on the caller's cart.
type CartService interface {
	Get(ctx context.Context, userID string) (*model.CartResponse, error)

	// AddItem snapshots the menu item's price into the cart. Quantities
	// below one are raised to one; a line above model.MaxQuantity is refused.
	AddItem(ctx context.Context, userID string, req model.CartItemRequest) (*model.CartResponse, error)

	// SetQuantity replaces the quantity of an existing line.
	SetQuantity(ctx context.Context, userID, itemID string, qty int) (*model.CartResponse, error)

	RemoveItem(ctx context.Context, userID, itemID string) (*model.CartResponse, error)
	Clear(ctx context.Context, userID string) error
}

// OrderService defines the customer side of the order lifecycle.
type OrderService interface {
	// Submit turns the caller's cart into one order row per line item.
	Submit(ctx context.Context, userID string, draft model.DraftOrder) (*model.SubmitResult, error)

	// History lists the caller's orders, newest first.
	History(ctx context.Context, userID string, filter model.HistoryFilter) (*model.HistoryResponse, error)

	// Cancel cancels one of the caller's orders inside the cancellation window.
	Cancel(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error)

	// Countdown streams the remaining cancellation window of one order.
	Countdown(ctx context.Context, userID string, orderID uuid.UUID) (<-chan time.Duration, error)
}

// AdminService defines operations reserved for administrators.
type AdminService interface {
	ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error)
	TransitionOrder(ctx context.Context, orderID uuid.UUID, to model.OrderStatus) (*model.Order, error)

	CreateMenuItem(ctx context.Context, item *model.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *model.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory removes a category. Categories that still hold items are kept.
	DeleteCategory(ctx context.Context, id int64) error
}

// UserService resolves callers and manages roles.
type UserService interface {
	// Resolve returns the actor for userID. Unknown users are customers.
	Resolve(ctx context.Context, userID string) (model.Actor, error)

	SetRole(ctx context.Context, userID string, role model.Role) error

	// ListUsers returns every known user, newest first.
	ListUsers(ctx context.Context) ([]model.User, error)
}
