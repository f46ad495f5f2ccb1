package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const menuColumns = `id, category_id, name, description, price, image_ref, rating, created_at`

// menuRepository implements the MenuRepository interface using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

func scanMenuItem(row pgx.Row) (model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.Price, &m.ImageRef, &m.Rating, &m.CreatedAt)
	return m, err
}

func (r *menuRepository) collect(rows pgx.Rows) ([]model.MenuItem, error) {
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

// ListCategories returns every category ordered by name.
func (r *menuRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// CreateCategory inserts a category. The ID is assigned by the database.
func (r *menuRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, category.Name).
		Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Info().Int64("category_id", category.ID).Msg("category created")
	return nil
}

// UpdateCategory renames a category.
func (r *menuRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, category.ID, category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Int64("category_id", category.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes an empty category.
func (r *menuRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrCategoryInUse
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}

	r.logger.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}

// ListMenu returns menu items, optionally restricted to one category.
func (r *menuRepository) ListMenu(ctx context.Context, categoryID *int64) ([]model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items`
	args := []any{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu")
		return nil, fmt.Errorf("failed to query menu: %w", err)
	}

	return r.collect(rows)
}

// GetByID retrieves a single menu item by its ID.
func (r *menuRepository) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	m, err := scanMenuItem(r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("item_id", id).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", id).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	return &m, nil
}

// GetByIDs retrieves multiple menu items by their IDs.
func (r *menuRepository) GetByIDs(ctx context.Context, ids []string) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query menu items by IDs")
		return nil, fmt.Errorf("failed to query menu items by IDs: %w", err)
	}

	return r.collect(rows)
}

// Create inserts a new menu item and fills in its creation time.
func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, category_id, name, description, price, image_ref, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		item.ID, item.CategoryID, item.Name, item.Description, item.Price, item.ImageRef, item.Rating,
	).Scan(&item.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrMenuItemExists
		case isForeignKeyViolation(err), isCheckViolation(err):
			return model.ErrInvalidMenuItem
		}
		r.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to create menu item")
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	r.logger.Info().Str("item_id", item.ID).Msg("menu item created")
	return nil
}

// Update replaces the mutable fields of a menu item.
func (r *menuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	query := `
		UPDATE menu_items
		SET category_id = $2, name = $3, description = $4, price = $5, image_ref = $6, rating = $7
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		item.ID, item.CategoryID, item.Name, item.Description, item.Price, item.ImageRef, item.Rating,
	).Scan(&item.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return model.ErrMenuItemNotFound
		case isForeignKeyViolation(err), isCheckViolation(err):
			return model.ErrInvalidMenuItem
		}
		r.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to update menu item")
		return fmt.Errorf("failed to update menu item: %w", err)
	}

	return nil
}

// Delete removes a menu item that no order references.
func (r *menuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrMenuItemInUse
		}
		r.logger.Error().Err(err).Str("item_id", id).Msg("failed to delete menu item")
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrMenuItemNotFound
	}

	r.logger.Info().Str("item_id", id).Msg("menu item deleted")
	return nil
}

// UpsertCatalog writes categories then items, replacing existing rows by ID.
func (r *menuRepository) UpsertCatalog(ctx context.Context, catalog *model.Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after Commit is a no-op.
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, c := range catalog.Categories {
		batch.Queue(`
			INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			c.ID, c.Name)
	}
	for _, m := range catalog.Items {
		batch.Queue(`
			INSERT INTO menu_items (id, category_id, name, description, price, image_ref, rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				category_id = EXCLUDED.category_id,
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				image_ref = EXCLUDED.image_ref,
				rating = EXCLUDED.rating`,
			m.ID, m.CategoryID, m.Name, m.Description, m.Price, m.ImageRef, m.Rating)
	}
	// Keep BIGSERIAL ahead of explicitly seeded IDs.
	batch.Queue(`SELECT setval(pg_get_serial_sequence('categories', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM categories), 1))`)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().Err(err).Int("statement", i).Msg("failed to upsert catalog")
			return fmt.Errorf("failed to upsert catalog: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to upsert catalog: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	r.logger.Info().
		Int("categories", len(catalog.Categories)).
		Int("items", len(catalog.Items)).
		Msg("catalog upserted")
	return nil
}
