package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/web/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser simulates a resolved session.
func withUser(u *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u != nil {
			SetCurrentUser(c, u, "token")
		}
		c.Next()
	}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{name: "anonymous is rejected", user: nil, wantStatus: http.StatusUnauthorized},
		{name: "authenticated passes", user: &domain.User{ID: 1, Role: domain.RoleUser}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/private", withUser(tt.user), RequireAuth(), func(c *gin.Context) {
				u, ok := CurrentUser(c)
				require.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"id": u.ID})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				env := decodeEnvelope(t, w)
				assert.Equal(t, "fail", env.Status)
				assert.Equal(t, "You are not logged in. Please log in to get access.", env.Message)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name        string
		user        *domain.User
		roles       []domain.Role
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "anonymous gets 401",
			roles:       []domain.Role{domain.RoleAdmin},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "You are not logged in. Please log in to get access.",
		},
		{
			name:        "wrong role gets 403",
			user:        &domain.User{ID: 1, Role: domain.RoleUser},
			roles:       []domain.Role{domain.RoleAdmin},
			wantStatus:  http.StatusForbidden,
			wantMessage: "You do not have permission to perform this action",
		},
		{
			name:       "matching role passes",
			user:       &domain.User{ID: 2, Role: domain.RoleAdmin},
			roles:      []domain.Role{domain.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "any listed role passes",
			user:       &domain.User{ID: 3, Role: domain.RoleUser},
			roles:      []domain.Role{domain.RoleAdmin, domain.RoleUser},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.DELETE("/thing", withUser(tt.user), RequireRole(tt.roles...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/thing", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeEnvelope(t, w).Message)
			}
		})
	}
}

func TestRequireRolePanicsOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() { RequireRole(domain.Role("root")) })
	assert.Panics(t, func() { RequireRole() })
}

func TestClearCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	SetCurrentUser(c, &domain.User{ID: 9}, "tok")
	assert.Equal(t, "tok", SessionToken(c))

	ClearCurrentUser(c)
	_, ok := CurrentUser(c)
	assert.False(t, ok)
	assert.Empty(t, SessionToken(c))
}
