package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/web/response"
)

const (
	msgNotLoggedIn  = "You are not logged in. Please log in to get access."
	msgNoPermission = "You do not have permission to perform this action"
)

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Fail(c, http.StatusUnauthorized, msgNotLoggedIn)
			return
		}
		c.Next()
	}
}

// RequireRole admits only users whose role is one of roles. It panics when a
// role is unknown, so misconfigured routes fail at start-up.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	if len(roles) == 0 {
		panic("RequireRole: at least one role is required")
	}
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("RequireRole: unknown role %q", r))
		}
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, msgNotLoggedIn)
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Fail(c, http.StatusForbidden, msgNoPermission)
			return
		}
		c.Next()
	}
}
