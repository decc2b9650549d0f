package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/stockroom/pkg/ctx"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
)

// HealthController answers liveness probes with the store's reachability.
type HealthController struct {
	ping func(ctx context.Context) error
}

func NewHealthController(ping func(ctx context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

func (h *HealthController) Show(c *ctx.Context) {
	pctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if h.ping != nil {
		if err := h.ping(pctx); err != nil {
			logger.WithCtx(c.Context()).Warn("health check failed", "error", err)
			c.Error(http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	c.Success(map[string]string{"database": "ok"})
}
