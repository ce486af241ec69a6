package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formcraft/internal/domain"
	"formcraft/internal/dto"
	"formcraft/internal/logger"
)

// HealthHandler reports liveness and the configured backends.
type HealthHandler struct {
	storage string
	cache   domain.Cache
}

// NewHealthHandler creates a HealthHandler. cache may be nil.
func NewHealthHandler(storage string, cache domain.Cache) *HealthHandler {
	return &HealthHandler{storage: storage, cache: cache}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", Storage: h.storage}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(c.UserContext()); err != nil {
			// The cache is optional; report it but stay healthy.
			logger.Get().Warn("cache ping failed", zap.Error(err))
			resp.Cache = "unavailable"
		}
	}
	return c.JSON(resp)
}
