package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MenuRepository defines the interface for catalogue data access.
type MenuRepository interface {
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// CreateCategory inserts a category and fills in its generated ID.
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory removes a category that no menu item references.
	DeleteCategory(ctx context.Context, id int64) error

	// ListMenu returns menu items, optionally restricted to one category.
	ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error)

	// GetByID retrieves a single menu item. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)

	// GetByIDs retrieves multiple menu items by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error)

	Create(ctx context.Context, item *model.MenuItem) error
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id string) error

	// UpsertCatalog writes a seed catalogue in a single transaction.
	UpsertCatalog(ctx context.Context, catalog *model.Catalog) error
}

// StatusUpdate is a compare-and-set status change. The row is only updated
// when its current status equals From and every optional guard holds.
type StatusUpdate struct {
	OrderID uuid.UUID
	From    model.OrderStatus
	To      model.OrderStatus
	At      time.Time

	// UserID, when set, requires the row to belong to this user.
	UserID string
	// CreatedAfter, when set, requires created_at to be strictly later.
	CreatedAfter *time.Time
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrders inserts every row of one checkout within the provided transaction.
	CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error

	// GetByID retrieves one order row. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser returns a user's orders joined with the menu, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.OrderView, error)

	// ListAll returns every order, optionally filtered by status, newest first.
	ListAll(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error)

	// UpdateStatus applies a compare-and-set transition. Returns nil when
	// no row matched.
	UpdateStatus(ctx context.Context, upd StatusUpdate) (*model.Order, error)
}

// UserRepository defines the interface for user role lookups.
type UserRepository interface {
	// GetByID retrieves a user. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// List returns every user, newest first.
	List(ctx context.Context) ([]model.User, error)

	// Upsert creates or replaces a user.
	Upsert(ctx context.Context, user *model.User) error

	// SetRole changes a user's role. Returns model.ErrUserNotFound when absent.
	SetRole(ctx context.Context, id string, role model.Role) error
}
