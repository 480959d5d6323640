package handlers

import (
	"net/http"
	"strconv"

	"github.com/Brownie44l1/propvest/internal/api/dto"
	"github.com/Brownie44l1/propvest/internal/auth"
	"github.com/Brownie44l1/propvest/internal/store"
	"github.com/Brownie44l1/propvest/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadSize bounds document uploads.
const maxUploadSize = 10 << 20

// ResourceHandler serves one listing domain from the caller's store.
type ResourceHandler[T any] struct {
	pool   *store.Pool[T]
	logger *zap.Logger
}

func NewResourceHandler[T any](pool *store.Pool[T], logger *zap.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{pool: pool, logger: logger}
}

// List handles GET /<domain>. Query parameters are layered over the user's
// current filters; reset=true starts again from the domain defaults. The
// page is only fetched when page= is given or nothing is loaded yet.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	st := h.pool.For(auth.UserID(c))
	q := c.Request.URL.Query()

	if q.Get("reset") == "true" {
		st.ResetFilters()
	}

	filters, err := view.FromQuery(q, h.pool.Config().Schema, st.Filters())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if err := st.SetFilters(filters); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	page := 0
	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, "Invalid page", errInvalidPage)
			return
		}
	} else if st.PageState().CurrentPage < 1 {
		page = 1
	}
	if page > 0 {
		if err := st.Load(c.Request.Context(), page); err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
	}

	respondSuccess(c, http.StatusOK, dto.ListResponse[T]{
		Data:    st.Filtered(),
		Loaded:  len(st.Entities()),
		Page:    st.PageState(),
		Filters: st.Filters(),
	})
}

// Get handles GET /<domain>/:id
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	item, err := h.pool.For(auth.UserID(c)).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": item})
}

// Create handles POST /<domain>
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	item, err := h.pool.For(auth.UserID(c)).Create(c.Request.Context(), body)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"data": item})
}

// Update handles PUT /<domain>/:id
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	item, err := h.pool.For(auth.UserID(c)).Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": item})
}

// Delete handles DELETE /<domain>/:id
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	if err := h.pool.For(auth.UserID(c)).Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Action handles POST /<domain>/:id/<action>. An empty body is allowed.
func (h *ResourceHandler[T]) Action(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				respondError(c, http.StatusBadRequest, "Invalid request", err)
				return
			}
		}

		item, err := h.pool.For(auth.UserID(c)).Action(c.Request.Context(), c.Param("id"), action, body)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{"data": item})
	}
}

// Upload handles POST /<domain>/:id/upload with a multipart "file" field.
func (h *ResourceHandler[T]) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "A file is required", err)
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read file", err)
		return
	}
	defer file.Close()

	item, err := h.pool.For(auth.UserID(c)).Upload(c.Request.Context(), c.Param("id"), "file", header.Filename, file)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": item})
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

// RegisterReadRoutes registers the list and detail routes.
func (h *ResourceHandler[T]) RegisterReadRoutes(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// RegisterRoutes registers full CRUD plus the given actions.
func (h *ResourceHandler[T]) RegisterRoutes(g *gin.RouterGroup, actions ...string) {
	h.RegisterReadRoutes(g)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	for _, action := range actions {
		g.POST("/:id/"+action, h.Action(action))
	}
}
