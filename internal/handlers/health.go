package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Environment string            `json:"environment"`
}

// Health pings each backing service. Any failing check turns the response
// into a 503.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	if h.cfg != nil {
		resp.Environment = h.cfg.Environment
	}

	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.ping(ctx); err != nil {
			h.log.Error().Err(err).Str("check", check.name).Msg("health check failed")
			resp.Checks[check.name] = "error"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.name] = "ok"
	}

	c.JSON(status, resp)
}
