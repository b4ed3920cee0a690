// Package health serves liveness and database readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db      db.Pinger
	started time.Time
}

func NewHandler(p db.Pinger) *Handler {
	return &Handler{db: p, started: time.Now()}
}

func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

// DB pings the pool; an unreachable database answers 503.
func (h *Handler) DB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(apperr.Unavailable("database unavailable", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "database": "connected"})
}
