package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/inventory-service/config"
)

func newLimitedRouter(cfg config.RateLimitConfig, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.POST("/login", RateLimit(cfg, rdb), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		Prefix:         "rl:test",
	}
	r := newLimitedRouter(cfg, rdb)

	t.Run("allows up to capacity then rejects", func(t *testing.T) {
		w := post(r, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)

		w = post(r, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		env := decodeEnvelope(t, w)
		assert.Equal(t, "fail", env.Status)
		assert.Equal(t, "Too many requests, please try again later.", env.Message)
	})

	t.Run("buckets are per client", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code)
	})

	t.Run("bucket key expires", func(t *testing.T) {
		keys := mr.Keys()
		require.NotEmpty(t, keys)
		assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
	})
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Minute, Prefix: "rl"}
	r := newLimitedRouter(cfg, rdb)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.3").Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := newLimitedRouter(config.RateLimitConfig{Enabled: false}, nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.4").Code)
	}
}
