package domain

import "errors"

// Errors reported by repositories for constraint violations.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")

	// ErrCategoryHasItems is returned when deleting a category still referenced by items.
	ErrCategoryHasItems = errors.New("category has items")
	// ErrCategoryMissing is returned when an item references a category that does not exist.
	ErrCategoryMissing = errors.New("category does not exist")
)
