package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckFunc reports the readiness of the backing store.
type HealthCheckFunc func(ctx context.Context) map[string]interface{}

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	check HealthCheckFunc
}

// NewHealthController creates a new health controller
func NewHealthController(check HealthCheckFunc) *HealthController {
	return &HealthController{check: check}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.Live)
	router.GET("/health/ready", c.Ready)
}

// Live reports process liveness only.
func (c *HealthController) Live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the store can be reached.
func (c *HealthController) Ready(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := c.check(checkCtx)
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, status)
}
