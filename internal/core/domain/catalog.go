package domain

import (
	"context"
	"time"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item is a stock-keeping unit. CategoryName is filled by list and get queries.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	SKU          *string   `json:"sku"`
	ImageURL     *string   `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput is the body of category create and update.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description"`
}

// ItemInput is the body of item create and update. Numeric fields are pointers
// so that zero can be told apart from a missing value.
type ItemInput struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	CategoryID  *int64   `json:"category_id" validate:"required,gt=0"`
	SKU         *string  `json:"sku"`
	ImageURL    *string  `json:"image_url"`
}

// CategoryRepository defines the data-access contract for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	// GetByID returns (nil, nil) when the category does not exist.
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, in CategoryInput) (*Category, error)
	// Update returns (nil, nil) when the category does not exist.
	Update(ctx context.Context, id int64, in CategoryInput) (*Category, error)
	// Delete reports whether a row was removed. Returns ErrCategoryHasItems
	// while items still reference the category.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ItemRepository defines the data-access contract for items.
type ItemRepository interface {
	List(ctx context.Context) ([]Item, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Item, error)
	// GetByID returns (nil, nil) when the item does not exist.
	GetByID(ctx context.Context, id int64) (*Item, error)
	// Create returns ErrCategoryMissing when the category does not exist.
	Create(ctx context.Context, in ItemInput) (*Item, error)
	// Update returns (nil, nil) when the item does not exist.
	Update(ctx context.Context, id int64, in ItemInput) (*Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
