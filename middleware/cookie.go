package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Read returns the session token sent by the client, or "".
func (sc SessionCookie) Read(c *gin.Context) string {
	v, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return v
}

// Set writes the session cookie, replacing any session cookie already queued
// on this response.
func (sc SessionCookie) Set(c *gin.Context, token string) {
	sc.write(c, token, int(sc.MaxAge/time.Second))
}

// Clear expires the session cookie on the client.
func (sc SessionCookie) Clear(c *gin.Context) {
	sc.write(c, "", -1)
}

func (sc SessionCookie) write(c *gin.Context, value string, maxAge int) {
	h := c.Writer.Header()
	prefix := sc.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
