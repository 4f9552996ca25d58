// Package web assembles the HTTP surface: middleware chain, operational
// endpoints and the versioned API.
package web

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/duynhne/inventory-service/config"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web/response"
	v1 "github.com/duynhne/inventory-service/internal/web/v1"
	"github.com/duynhne/inventory-service/middleware"
)

// Dependencies wires the router to the services built in main.
type Dependencies struct {
	Config   *config.Config
	Auth     *logicv1.AuthService
	Catalog  *logicv1.CatalogService
	Sessions middleware.SessionResolver
	// Redis backs the rate limiter. Nil disables rate limiting.
	Redis *redis.Client
	// ShuttingDown flips /ready to 503 while the server drains.
	ShuttingDown *atomic.Bool
}

// NewRouter builds the gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	exposeErrors := !cfg.IsProduction()
	shuttingDown := deps.ShuttingDown
	if shuttingDown == nil {
		shuttingDown = new(atomic.Bool)
	}

	cookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.IsProduction(),
	}

	r := gin.New()
	r.Use(middleware.Recovery(exposeErrors))
	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Service.Name))
	}
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())

	// Operational endpoints stay outside the session middleware.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if shuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  response.StatusSuccess,
			"message": "Welcome to the Inventory Management API",
			"endpoints": gin.H{
				"auth":       "/api/auth",
				"categories": "/api/categories",
				"items":      "/api/items",
			},
		})
	})

	api := r.Group("/api", middleware.Session(deps.Sessions, cookie, exposeErrors))
	v1.NewHandler(deps.Auth, cookie, exposeErrors).
		RegisterRoutes(api, middleware.RateLimit(cfg.RateLimit, deps.Redis))
	v1.NewCatalogHandler(deps.Catalog, exposeErrors).RegisterRoutes(api)

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "Can't find "+c.Request.URL.RequestURI()+" on this server!")
	})

	return r
}
