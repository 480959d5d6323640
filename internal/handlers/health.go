package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Brownie44l1/propvest/internal/api/dto"
	"github.com/gin-gonic/gin"
)

const serviceName = "propvest"

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]Check
}

// NewHealthHandler builds the handler. checks may be empty when the server
// runs without Postgres and Redis.
func NewHealthHandler(version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Health handles GET /health - returns API health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: h.version,
	})
}

// Readiness handles GET /ready and pings every configured dependency.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	results := map[string]string{"api": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status, code = "not ready", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	c.JSON(code, dto.HealthResponse{
		Status:  status,
		Service: serviceName,
		Version: h.version,
		Checks:  results,
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Readiness)
}
