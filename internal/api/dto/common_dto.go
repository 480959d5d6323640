package dto

import (
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/pagination"
	"github.com/Brownie44l1/propvest/internal/view"
)

// ==============================================
// COMMON RESPONSE DTOs
// ==============================================

// ErrorResponse - Standard error format
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Notice  models.Notice `json:"notice"`
}

// ListResponse is one filtered page of a listing domain.
type ListResponse[T any] struct {
	Data    []T              `json:"data"`
	Loaded  int              `json:"loaded"`
	Page    pagination.State `json:"page"`
	Filters view.Filters     `json:"filters"`
}

// HealthResponse - API health check
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
