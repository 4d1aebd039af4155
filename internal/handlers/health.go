package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sky24/web/internal/cache"
)

type healthResponse struct {
	Status      string `json:"status"`
	Cache       string `json:"cache"`
	Backend     string `json:"backend"`
	Environment string `json:"environment"`
}

// Health reports redis live and the backend as last seen by the monitor job.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Cache: "ok", Backend: "unknown", Environment: h.cfg.Environment}
	code := http.StatusOK

	if err := cache.Ping(ctx, h.cache); err != nil {
		resp.Cache = "error"
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	if h.health != nil {
		ok, detail := h.health.Status()
		resp.Backend = detail
		if !ok && resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	c.JSON(code, resp)
}
