package handler

import (
	"net/http"

	"github.com/fieldops/backend/internal/application/entity"
	"github.com/gin-gonic/gin"
)

// identityResetter is implemented by records embedding shared.BaseEntity
type identityResetter interface {
	ResetIdentity()
}

// EntityHandler serves the five CRUD routes of one entity kind under /<kind path>
type EntityHandler[T any] struct {
	BaseHandler
	svc *entity.Service[T]
}

// NewEntityHandler creates a handler for svc's kind
func NewEntityHandler[T any](svc *entity.Service[T]) *EntityHandler[T] {
	return &EntityHandler[T]{svc: svc}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *EntityHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.svc.Kind().Path)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /<kind>
func (h *EntityHandler[T]) Create(c *gin.Context) {
	record, ok := h.bind(c)
	if !ok {
		return
	}

	created, err := h.svc.Create(c.Request.Context(), record)
	if err != nil {
		h.HandleError(c, h.svc.Kind(), err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// List handles GET /<kind>
func (h *EntityHandler[T]) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, h.svc.Kind(), err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get handles GET /<kind>/:id
func (h *EntityHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c, h.svc.Kind().NotFoundMessage())
		return
	}

	record, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, h.svc.Kind(), err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update handles PUT /<kind>/:id. Every mutable attribute is replaced by the body.
func (h *EntityHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c, h.svc.Kind().NotFoundMessage())
		return
	}
	record, ok := h.bind(c)
	if !ok {
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, record)
	if err != nil {
		h.HandleError(c, h.svc.Kind(), err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /<kind>/:id
func (h *EntityHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c, h.svc.Kind().NotFoundMessage())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, h.svc.Kind(), err)
		return
	}
	h.Message(c, http.StatusOK, h.svc.Kind().DeletedMessage())
}

// bind decodes the body and strips any client supplied id or timestamps
func (h *EntityHandler[T]) bind(c *gin.Context) (*T, bool) {
	record := new(T)
	if !h.BindBody(c, record) {
		return nil, false
	}
	if r, ok := any(record).(identityResetter); ok {
		r.ResetIdentity()
	}
	return record, true
}
