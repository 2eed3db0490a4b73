package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Check pings one backing dependency.
type Check func(ctx context.Context) error

// StatusHandler reports liveness and, through Ready, the state of its checks.
type StatusHandler struct {
	checks map[string]Check
}

func NewStatusHandler(checks map[string]Check) *StatusHandler {
	return &StatusHandler{checks: checks}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Available"})
}

func (h *StatusHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	failed := make([]string, 0)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			_ = c.Error(err)
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "Unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Ready"})
}
