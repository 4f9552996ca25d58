package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

const categoryColumns = `id, name, description, created_at, updated_at`

// PgxCategoryRepository implements domain.CategoryRepository using pgxpool.
type PgxCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *PgxCategoryRepository {
	return &PgxCategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *PgxCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetByID returns (nil, nil) when the category does not exist.
func (r *PgxCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *PgxCategoryRepository) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING ` + categoryColumns
	return scanCategory(r.pool.QueryRow(ctx, query, in.Name, in.Description))
}

// Update returns (nil, nil) when the category does not exist.
func (r *PgxCategoryRepository) Update(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id, in.Name, in.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// Delete reports whether a row was removed.
func (r *PgxCategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return false, fmt.Errorf("delete category %d: %w", id, domain.ErrCategoryHasItems)
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanCategory(s pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
