// Package endpoint holds the operational routes: /health, /livez, /readyz
// and /info.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kvbridge/component"
	"github.com/kbukum/kvbridge/observability"
	"github.com/kbukum/kvbridge/version"
)

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

var startTime = time.Now()

// Health aggregates component health. Any unhealthy component turns the
// answer into 503.
func Health(serviceName, version string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(serviceName, version)
		for _, h := range check(c.Request.Context(), checker) {
			sh.AddComponent(h)
		}

		status := http.StatusOK
		if !sh.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"service":    sh.Service,
			"version":    sh.Version,
			"status":     sh.Status,
			"components": sh.Components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Liveness answers 200 while the process can serve HTTP at all.
func Liveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}

// Readiness answers 503 naming the first unhealthy component, so traffic is
// held back until the store is reachable.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range check(c.Request.Context(), checker) {
			if h.Status == component.StatusUnhealthy {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "component": h.Name})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

type infoResponse struct {
	Service string `json:"service"`
	version.Info
	Uptime string `json:"uptime"`
}

// Info reports build information and uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, infoResponse{
			Service: serviceName,
			Info:    version.Get(),
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		})
	}
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}
