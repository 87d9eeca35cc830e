package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency health.
type HealthHandler struct {
	storage Pinger
	cache   Pinger
}

// NewHealthHandler creates a health handler. cache may be nil.
func NewHealthHandler(storage, cache Pinger) *HealthHandler {
	return &HealthHandler{storage: storage, cache: cache}
}

// HealthResponse lists the state of each dependency.
type HealthResponse struct {
	Status  string            `json:"status"`
	Storage string            `json:"storage"`
	Cache   string            `json:"cache,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Health godoc
// @Summary Health check
// @Description Storage must be reachable. An unreachable cache only degrades logout and password reset.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Storage: "up"}
	status := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		resp.Status, resp.Storage = "unavailable", "down"
		resp.Errors = map[string]string{"storage": err.Error()}
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "up"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "down"
			if resp.Errors == nil {
				resp.Errors = map[string]string{}
			}
			resp.Errors["cache"] = err.Error()
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	return c.JSON(status, resp)
}
