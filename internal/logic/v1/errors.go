// Package v1 provides the authentication and catalog business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for the failures a handler must tell
// apart. They are wrapped with context using fmt.Errorf("%w") when returned
// from business logic methods. Input problems are reported as *ValidationError
// and missing resources as *NotFoundError.
//
// Example Usage:
//
//	if row == nil {
//	    return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUsernameTaken)
//	}
//
// Error Checking (in handlers):
//
//	var verr *logicv1.ValidationError
//	switch {
//	case errors.As(err, &verr):
//	    response.Fail(c, http.StatusBadRequest, "Validation error", verr.Errors...)
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
//	default:
//	    response.InternalError(c, err, expose)
//	}
package v1

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for authentication and catalog operations.
var (
	// ErrInvalidCredentials indicates the username or password is wrong.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword indicates the current password given to a password change is wrong.
	// HTTP Status: 401 Unauthorized
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrNotLoggedIn indicates the operation needs an authenticated user.
	// HTTP Status: 401 Unauthorized
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUsernameTaken indicates the username already belongs to another user.
	// HTTP Status: 400 Bad Request
	ErrUsernameTaken = errors.New("username already in use")

	// ErrEmailTaken indicates the email already belongs to another user.
	// HTTP Status: 400 Bad Request
	ErrEmailTaken = errors.New("email already in use")

	// ErrCategoryNotFound and ErrItemNotFound match a *NotFoundError of that resource.
	// HTTP Status: 404 Not Found
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")

	// ErrCategoryInUse indicates a category cannot be deleted while items reference it.
	// HTTP Status: 409 Conflict
	ErrCategoryInUse = errors.New("category in use")
)

// ValidationError carries one message per invalid input field.
// HTTP Status: 400 Bad Request
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NotFoundError reports a missing catalog resource by the id the client asked for.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrCategoryNotFound:
		return e.Resource == resourceCategory
	case ErrItemNotFound:
		return e.Resource == resourceItem
	}
	return false
}

const (
	resourceCategory = "Category"
	resourceItem     = "Item"
)

// CategoryNotFound builds the not-found error for a category id.
func CategoryNotFound(id string) error {
	return &NotFoundError{Resource: resourceCategory, ID: id}
}

// ItemNotFound builds the not-found error for an item id.
func ItemNotFound(id string) error {
	return &NotFoundError{Resource: resourceItem, ID: id}
}
