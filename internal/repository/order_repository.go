package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `o.id, o.batch_id, o.user_id, o.item_id, o.quantity, o.created_at, o.updated_at,
	o.status, o.delivery_address, o.payment_method, o.payment_aux_info`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func orderScanTargets(o *model.Order) []any {
	return []any{
		&o.ID, &o.BatchID, &o.UserID, &o.ItemID, &o.Quantity, &o.CreatedAt, &o.UpdatedAt,
		&o.Status, &o.DeliveryAddress, &o.PaymentMethod, &o.PaymentAuxInfo,
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrders inserts every row of one checkout within the provided transaction.
func (r *orderRepository) CreateOrders(ctx context.Context, tx pgx.Tx, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	query := `
		INSERT INTO orders (id, batch_id, user_id, item_id, quantity, created_at, updated_at,
			status, delivery_address, payment_method, payment_aux_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(query,
			o.ID, o.BatchID, o.UserID, o.ItemID, o.Quantity, o.CreatedAt, o.UpdatedAt,
			o.Status, o.DeliveryAddress, o.PaymentMethod, o.PaymentAuxInfo,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range orders {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("batch_id", orders[i].BatchID.String()).
				Str("item_id", orders[i].ItemID).
				Msg("failed to create order row")
			if isForeignKeyViolation(err) {
				return fmt.Errorf("item %s: %w", orders[i].ItemID, model.ErrMenuItemNotFound)
			}
			return fmt.Errorf("failed to create order row: %w", err)
		}
	}

	r.logger.Debug().
		Str("batch_id", orders[0].BatchID.String()).
		Int("count", len(orders)).
		Msg("order rows created")

	return nil
}

// GetByID retrieves one order row by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id).
		Scan(orderScanTargets(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &o, nil
}

func (r *orderRepository) queryViews(ctx context.Context, query string, args ...any) ([]model.OrderView, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	views := []model.OrderView{}
	for rows.Next() {
		var v model.OrderView
		targets := append(orderScanTargets(&v.Order), &v.ItemName, &v.UnitPrice, &v.ImageRef)
		if err := rows.Scan(targets...); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		v.LineTotal = v.UnitPrice * int64(v.Quantity)
		v.StatusText = v.Status.Label()
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return views, nil
}

// ListByUser returns a user's orders joined with the menu, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.OrderView, error) {
	query := `
		SELECT ` + orderColumns + `, m.name, m.price, m.image_ref
		FROM orders o
		JOIN menu_items m ON m.id = o.item_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id
	`
	return r.queryViews(ctx, query, userID)
}

// ListAll returns every order, optionally filtered by status, newest first.
func (r *orderRepository) ListAll(ctx context.Context, status *model.OrderStatus) ([]model.OrderView, error) {
	query := `
		SELECT ` + orderColumns + `, m.name, m.price, m.image_ref
		FROM orders o
		JOIN menu_items m ON m.id = o.item_id
	`
	args := []any{}
	if status != nil {
		query += ` WHERE o.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY o.created_at DESC, o.id`

	return r.queryViews(ctx, query, args...)
}

// UpdateStatus applies a compare-and-set transition.
func (r *orderRepository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*model.Order, error) {
	query := `
		UPDATE orders o
		SET status = $3, updated_at = $4
		WHERE o.id = $1 AND o.status = $2
	`
	args := []any{upd.OrderID, upd.From, upd.To, upd.At}

	if upd.UserID != "" {
		args = append(args, upd.UserID)
		query += fmt.Sprintf(` AND o.user_id = $%d`, len(args))
	}
	if upd.CreatedAfter != nil {
		args = append(args, *upd.CreatedAfter)
		query += fmt.Sprintf(` AND o.created_at > $%d`, len(args))
	}
	query += ` RETURNING ` + orderColumns

	var o model.Order
	err := r.pool.QueryRow(ctx, query, args...).Scan(orderScanTargets(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("order_id", upd.OrderID.String()).
				Str("from", string(upd.From)).
				Msg("status compare-and-set matched no row")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", upd.OrderID.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Info().
		Str("order_id", o.ID.String()).
		Str("from", string(upd.From)).
		Str("to", string(o.Status)).
		Msg("order status updated")

	return &o, nil
}
