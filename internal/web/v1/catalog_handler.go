package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/inventory-service/internal/core/domain"
	logicv1 "github.com/duynhne/inventory-service/internal/logic/v1"
	"github.com/duynhne/inventory-service/internal/web/response"
	"github.com/duynhne/inventory-service/middleware"
)

// CatalogHandler serves categories and items.
type CatalogHandler struct {
	catalog      *logicv1.CatalogService
	exposeErrors bool
}

func NewCatalogHandler(catalog *logicv1.CatalogService, exposeErrors bool) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, exposeErrors: exposeErrors}
}

// RegisterRoutes registers category and item routes under rg. Reads are
// public, writes need a session and deletes need the admin role.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adminOnly := []gin.HandlerFunc{middleware.RequireAuth(), middleware.RequireRole(domain.RoleAdmin)}

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.GET("/:id/items", h.GetCategoryItems)
	categories.POST("", middleware.RequireAuth(), h.CreateCategory)
	categories.PUT("/:id", middleware.RequireAuth(), h.UpdateCategory)
	categories.DELETE("/:id", append(adminOnly, h.DeleteCategory)...)

	items := rg.Group("/items")
	items.GET("", h.ListItems)
	items.GET("/:id", h.GetItem)
	items.POST("", middleware.RequireAuth(), h.CreateItem)
	items.PUT("/:id", middleware.RequireAuth(), h.UpdateItem)
	items.DELETE("/:id", append(adminOnly, h.DeleteItem)...)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, err, h.exposeErrors)
		return
	}
	response.List(c, len(categories), gin.H{"categories": orEmpty(categories)})
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.CategoryNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	category, err := h.catalog.GetCategory(ctx, id)
	if err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"category": category})
}

func (h *CatalogHandler) GetCategoryItems(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.CategoryNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	category, items, err := h.catalog.CategoryItems(ctx, id)
	if err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.List(c, len(items), gin.H{"category": category, "items": orEmpty(items)})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var in domain.CategoryInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	category, err := h.catalog.CreateCategory(ctx, in)
	if err != nil {
		span.RecordError(err)
		writeError(c, err, h.exposeErrors)
		return
	}
	span.SetAttributes(attribute.Int64("category.id", category.ID))
	response.Data(c, http.StatusCreated, gin.H{"category": category})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.CategoryNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	var in domain.CategoryInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	category, err := h.catalog.UpdateCategory(ctx, id, in)
	if err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"category": category})
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.CategoryNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	if err := h.catalog.DeleteCategory(ctx, id); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.NoContent(c)
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	items, err := h.catalog.ListItems(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, err, h.exposeErrors)
		return
	}
	response.List(c, len(items), gin.H{"items": orEmpty(items)})
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.ItemNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	item, err := h.catalog.GetItem(ctx, id)
	if err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"item": item})
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var in domain.ItemInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	item, err := h.catalog.CreateItem(ctx, in)
	if err != nil {
		span.RecordError(err)
		writeError(c, err, h.exposeErrors)
		return
	}
	span.SetAttributes(attribute.Int64("item.id", item.ID))
	response.Data(c, http.StatusCreated, gin.H{"item": item})
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.ItemNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	var in domain.ItemInput
	if err := bindJSON(c, &in); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	item, err := h.catalog.UpdateItem(ctx, id, in)
	if err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"item": item})
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	id, ok := h.pathID(c, logicv1.ItemNotFound)
	if !ok {
		return
	}
	ctx, span := startSpan(c)
	defer span.End()

	if err := h.catalog.DeleteItem(ctx, id); err != nil {
		writeError(c, err, h.exposeErrors)
		return
	}
	response.NoContent(c)
}

// pathID parses the :id parameter. Anything that is not a positive integer
// cannot name a row, so it is reported as not found.
func (h *CatalogHandler) pathID(c *gin.Context, notFound func(string) error) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(c, notFound(raw), h.exposeErrors)
		return 0, false
	}
	return id, true
}

// orEmpty keeps empty lists rendering as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
