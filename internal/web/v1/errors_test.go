package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/inventory-service/internal/core/domain"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expose      bool
		wantCode    int
		wantStatus  string
		wantMessage string
	}{
		{"validation", &logicv1.ValidationError{Errors: []string{"Username is required"}}, false, http.StatusBadRequest, "fail", "Validation error"},
		{"username taken", fmt.Errorf("register: %w", logicv1.ErrUsernameTaken), false, http.StatusBadRequest, "fail", "Username already in use"},
		{"email taken", fmt.Errorf("register: %w", logicv1.ErrEmailTaken), false, http.StatusBadRequest, "fail", "Email already in use"},
		{"invalid credentials", fmt.Errorf("login: %w", logicv1.ErrInvalidCredentials), false, http.StatusUnauthorized, "fail", "Invalid credentials"},
		{"wrong password", logicv1.ErrWrongPassword, false, http.StatusUnauthorized, "fail", "Current password is incorrect"},
		{"not logged in", logicv1.ErrNotLoggedIn, false, http.StatusUnauthorized, "fail", "You are not logged in"},
		{"not found", logicv1.CategoryNotFound("7"), false, http.StatusNotFound, "fail", "Category with ID 7 not found"},
		{"in use", fmt.Errorf("delete: %w", logicv1.ErrCategoryInUse), false, http.StatusConflict, "fail", "Cannot delete a category that still has items"},
		{"internal hidden", errors.New("connection reset"), false, http.StatusInternalServerError, "error", response.GenericErrorMessage},
		{"internal exposed", errors.New("connection reset"), true, http.StatusInternalServerError, "error", "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(c, tt.err, tt.expose)

			assert.Equal(t, tt.wantCode, w.Code)
			var env response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestBindJSON(t *testing.T) {
	bind := func(body string) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var in domain.ItemInput
		return bindJSON(c, &in)
	}

	assert.NoError(t, bind(""))
	assert.NoError(t, bind(`{"name":"Hammer","price":1.5}`))

	tests := map[string]string{
		`{"price":"free"}`:    "Item price must be a non-negative number",
		`{"quantity":1.5}`:    "Item quantity must be a non-negative integer",
		`{"category_id":"x"}`: "Category ID must be a positive integer",
		`{"name":`:            "Invalid request body",
		`{"name":["a","b"]}`:  "Invalid request body",
	}
	for body, want := range tests {
		var verr *logicv1.ValidationError
		require.ErrorAs(t, bind(body), &verr, body)
		assert.Equal(t, []string{want}, verr.Errors, body)
	}
}
