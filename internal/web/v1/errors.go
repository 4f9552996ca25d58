package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/inventory-service/internal/logger"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web/response"
)

// typeMessages reports a JSON value of the wrong type for a field.
var typeMessages = map[string]string{
	"price":       "Item price must be a non-negative number",
	"quantity":    "Item quantity must be a non-negative integer",
	"category_id": "Category ID must be a positive integer",
}

// bindJSON decodes the request body into dst. An empty body leaves dst zeroed
// so the validator reports the missing fields.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if msg, ok := typeMessages[typeErr.Field]; ok {
			return &logicv1.ValidationError{Errors: []string{msg}}
		}
	}
	return &logicv1.ValidationError{Errors: []string{"Invalid request body"}}
}

// writeError maps a business error to its HTTP response.
func writeError(c *gin.Context, err error, exposeErrors bool) {
	var (
		verr     *logicv1.ValidationError
		notFound *logicv1.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		response.Fail(c, http.StatusBadRequest, "Validation error", verr.Errors...)
	case errors.Is(err, logicv1.ErrUsernameTaken):
		response.Fail(c, http.StatusBadRequest, "Username already in use")
	case errors.Is(err, logicv1.ErrEmailTaken):
		response.Fail(c, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, logicv1.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, logicv1.ErrWrongPassword):
		response.Fail(c, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, logicv1.ErrNotLoggedIn):
		response.Fail(c, http.StatusUnauthorized, "You are not logged in")
	case errors.As(err, &notFound):
		response.Fail(c, http.StatusNotFound, notFound.Error())
	case errors.Is(err, logicv1.ErrCategoryInUse):
		response.Fail(c, http.StatusConflict, "Cannot delete a category that still has items")
	default:
		logger.FromContext(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		_ = c.Error(err)
		response.InternalError(c, err, exposeErrors)
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	writeError(c, err, h.exposeErrors)
}
