package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/logger"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web/response"
	"github.com/duynhne/inventory-service/middleware"
)

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor, no global state.
type Handler struct {
	auth         *logicv1.AuthService
	cookie       middleware.SessionCookie
	exposeErrors bool
}

// NewHandler creates a new Handler. exposeErrors controls whether internal
// error text reaches clients.
func NewHandler(auth *logicv1.AuthService, cookie middleware.SessionCookie, exposeErrors bool) *Handler {
	return &Handler{auth: auth, cookie: cookie, exposeErrors: exposeErrors}
}

// RegisterRoutes registers the auth routes under rg. limiter guards the
// credential-accepting endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/register", limiter, h.Register)
	auth.POST("/login", limiter, h.Login)
	auth.GET("/logout", middleware.RequireAuth(), h.Logout)
	auth.GET("/me", middleware.RequireAuth(), h.GetMe)
	auth.PATCH("/update-password", middleware.RequireAuth(), h.UpdatePassword)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		h.writeError(c, err)
		return
	}

	resp, err := h.auth.Register(ctx, req, h.cookie.Read(c))
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	h.establish(c, resp)
	logger.FromContext(ctx).Info().Int64("user_id", resp.User.ID).Msg("Registration successful")
	response.Data(c, http.StatusCreated, gin.H{"user": resp.User})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		h.writeError(c, err)
		return
	}

	resp, err := h.auth.Login(ctx, req, h.cookie.Read(c))
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	h.establish(c, resp)
	logger.FromContext(ctx).Info().Int64("user_id", resp.User.ID).Msg("Login successful")
	response.Data(c, http.StatusOK, gin.H{"user": resp.User})
}

// Logout handles GET /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	user, _ := middleware.CurrentUser(c)
	if err := h.auth.Logout(ctx, user, middleware.SessionToken(c)); err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("Logout failed")
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Error logging out")
		return
	}

	h.cookie.Clear(c)
	middleware.ClearCurrentUser(c)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// GetMe handles GET /api/auth/me.
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "You are not logged in")
		return
	}
	response.Data(c, http.StatusOK, gin.H{"user": user})
}

// UpdatePassword handles PATCH /api/auth/update-password.
func (h *Handler) UpdatePassword(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.UpdatePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	session, err := h.auth.UpdatePassword(ctx, user, req)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	h.cookie.Set(c, session.Token)
	middleware.SetCurrentUser(c, user, session.Token)
	response.Message(c, http.StatusOK, "Password updated successfully")
}

// establish hands the new session to the client and to the rest of the request.
func (h *Handler) establish(c *gin.Context, resp *domain.AuthResponse) {
	h.cookie.Set(c, resp.Session.Token)
	middleware.SetCurrentUser(c, resp.User, resp.Session.Token)
}

func startSpan(c *gin.Context) (ctx context.Context, span trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
}
