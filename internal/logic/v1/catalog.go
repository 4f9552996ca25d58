package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/middleware"
)

// CatalogService implements category and item management.
type CatalogService struct {
	categories domain.CategoryRepository
	items      domain.ItemRepository
	validate   *Validator
}

func NewCatalogService(categories domain.CategoryRepository, items domain.ItemRepository, validate *Validator) *CatalogService {
	return &CatalogService{categories: categories, items: items, validate: validate}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.list_categories")
	defer span.End()

	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.get_category")
	defer span.End()

	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query category %d: %w", id, err)
	}
	if c == nil {
		return nil, CategoryNotFound(strconv.FormatInt(id, 10))
	}
	return c, nil
}

// CategoryItems returns a category together with its items.
func (s *CatalogService) CategoryItems(ctx context.Context, id int64) (*domain.Category, []domain.Item, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.items.ListByCategory(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query items of category %d: %w", id, err)
	}
	return c, items, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.create_category")
	defer span.End()

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.categories.Create(ctx, in)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// UpdateCategory checks existence before validating, so an unknown id is 404
// even with an invalid body.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ctx, span := startCatalogSpan(ctx, "catalog.update_category")
	defer span.End()

	c, err := s.categories.Update(ctx, id, in)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	if c == nil {
		return nil, CategoryNotFound(strconv.FormatInt(id, 10))
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, span := startCatalogSpan(ctx, "catalog.delete_category")
	defer span.End()

	deleted, err := s.categories.Delete(ctx, id)
	if errors.Is(err, domain.ErrCategoryHasItems) {
		return fmt.Errorf("delete category %d: %w", id, ErrCategoryInUse)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if !deleted {
		return CategoryNotFound(strconv.FormatInt(id, 10))
	}
	return nil
}

func (s *CatalogService) ListItems(ctx context.Context) ([]domain.Item, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.list_items")
	defer span.End()

	return s.items.List(ctx)
}

func (s *CatalogService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.get_item")
	defer span.End()

	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query item %d: %w", id, err)
	}
	if it == nil {
		return nil, ItemNotFound(strconv.FormatInt(id, 10))
	}
	return it, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	ctx, span := startCatalogSpan(ctx, "catalog.create_item")
	defer span.End()

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	it, err := s.items.Create(ctx, in)
	if err != nil {
		return nil, mapCategoryMissing(err, in)
	}
	return it, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id int64, in domain.ItemInput) (*domain.Item, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ctx, span := startCatalogSpan(ctx, "catalog.update_item")
	defer span.End()

	it, err := s.items.Update(ctx, id, in)
	if err != nil {
		return nil, mapCategoryMissing(err, in)
	}
	if it == nil {
		return nil, ItemNotFound(strconv.FormatInt(id, 10))
	}
	return it, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	ctx, span := startCatalogSpan(ctx, "catalog.delete_item")
	defer span.End()

	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if !deleted {
		return ItemNotFound(strconv.FormatInt(id, 10))
	}
	return nil
}

func mapCategoryMissing(err error, in domain.ItemInput) error {
	if errors.Is(err, domain.ErrCategoryMissing) && in.CategoryID != nil {
		return CategoryNotFound(strconv.FormatInt(*in.CategoryID, 10))
	}
	return fmt.Errorf("write item: %w", err)
}

func startCatalogSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return middleware.StartSpan(ctx, name, trace.WithAttributes(attribute.String("layer", "logic")))
}
