package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

const itemSelect = `
	SELECT i.id, i.name, i.description, i.price, i.quantity, i.category_id, c.name,
	       i.sku, i.image_url, i.created_at, i.updated_at
	FROM items i
	JOIN categories c ON c.id = i.category_id`

// PgxItemRepository implements domain.ItemRepository using pgxpool.
type PgxItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *PgxItemRepository {
	return &PgxItemRepository{pool: pool}
}

// List returns all items with their category name, ordered by item name.
func (r *PgxItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.list(ctx, itemSelect+` ORDER BY i.name`)
}

// ListByCategory returns the items of one category.
func (r *PgxItemRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	return r.list(ctx, itemSelect+` WHERE i.category_id = $1 ORDER BY i.name`, categoryID)
}

// GetByID returns (nil, nil) when the item does not exist.
func (r *PgxItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, itemSelect+` WHERE i.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

// Create inserts an item and returns it joined with its category name.
func (r *PgxItemRepository) Create(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	query := `
		WITH i AS (
			INSERT INTO items (name, description, price, quantity, category_id, sku, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT i.id, i.name, i.description, i.price, i.quantity, i.category_id, c.name,
		       i.sku, i.image_url, i.created_at, i.updated_at
		FROM i JOIN categories c ON c.id = i.category_id`

	it, err := scanItem(r.pool.QueryRow(ctx, query,
		in.Name, in.Description, in.Price, in.Quantity, in.CategoryID, in.SKU, in.ImageURL))
	if err != nil {
		return nil, mapItemError(err, in)
	}
	return it, nil
}

// Update replaces every field of an item. Returns (nil, nil) when the item does not exist.
func (r *PgxItemRepository) Update(ctx context.Context, id int64, in domain.ItemInput) (*domain.Item, error) {
	query := `
		WITH i AS (
			UPDATE items
			SET name = $2, description = $3, price = $4, quantity = $5, category_id = $6,
			    sku = $7, image_url = $8, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT i.id, i.name, i.description, i.price, i.quantity, i.category_id, c.name,
		       i.sku, i.image_url, i.created_at, i.updated_at
		FROM i JOIN categories c ON c.id = i.category_id`

	it, err := scanItem(r.pool.QueryRow(ctx, query,
		id, in.Name, in.Description, in.Price, in.Quantity, in.CategoryID, in.SKU, in.ImageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapItemError(err, in)
	}
	return it, nil
}

func (r *PgxItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgxItemRepository) list(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func mapItemError(err error, in domain.ItemInput) error {
	if _, ok := constraintViolation(err, foreignKeyViolation); ok && in.CategoryID != nil {
		return fmt.Errorf("category %d: %w", *in.CategoryID, domain.ErrCategoryMissing)
	}
	return err
}

func scanItem(s pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := s.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Quantity, &it.CategoryID,
		&it.CategoryName, &it.SKU, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
