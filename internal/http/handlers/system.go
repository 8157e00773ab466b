package handlers

import (
	"context"
	"net/http"
	"time"

	"devcamper/internal/domain"

	"github.com/gin-gonic/gin"
)

// Pinger reports store reachability. Nil means there is nothing to check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	DB Pinger
}

// GET /api/v1/health
func (h SystemHandler) Health(c *gin.Context) {
	status := gin.H{"success": true, "status": "ok"}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			fail(c, domain.UnavailableError{Msg: "Database unreachable", Err: err})
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

// NotFound answers unknown routes in the error envelope.
func NotFound(c *gin.Context) {
	fail(c, domain.NotFoundError{Msg: "Route not found"})
}
