package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/logger"
	"github.com/duynhne/inventory-service/internal/web/response"
)

const (
	currentUserKey  = "auth.user"
	sessionTokenKey = "auth.session_token"
)

// SessionResolver restores the user behind a session token. A nil user with a
// nil error means the token is unknown or expired.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Session restores the identity carried by the session cookie. Requests with no
// cookie, or with a stale one, continue anonymously; a store failure aborts with 500.
// A resolved session has its cookie re-issued so the client expiry slides with the server's.
func Session(resolver SessionResolver, cookie SessionCookie, exposeErrors bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Read(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, err := resolver.Resolve(ctx, token)
		if err != nil {
			logger.FromContext(ctx).Error().Err(err).Msg("Session lookup failed")
			_ = c.Error(err)
			response.InternalError(c, err, exposeErrors)
			return
		}
		if user == nil {
			cookie.Clear(c)
			c.Next()
			return
		}

		SetCurrentUser(c, user, token)
		cookie.Set(c, token)
		c.Next()
	}
}

// SetCurrentUser attaches an authenticated identity to the request.
func SetCurrentUser(c *gin.Context, user *domain.User, token string) {
	c.Set(currentUserKey, user)
	c.Set(sessionTokenKey, token)
}

// ClearCurrentUser drops the identity, e.g. after logout.
func ClearCurrentUser(c *gin.Context) {
	c.Set(currentUserKey, nil)
	c.Set(sessionTokenKey, "")
}

// CurrentUser returns the user attached by Session, if any.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// SessionToken returns the token of the resolved session, or "".
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}
