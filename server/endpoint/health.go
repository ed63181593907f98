package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/flowview/component"
)

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  time.Time              `json:"timestamp"`
	Components []component.Health     `json:"components,omitempty"`
}

// Health aggregates component health. Any unhealthy component makes the
// service unhealthy (503); degraded ones downgrade it but still answer 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := check(c.Request.Context(), serviceName, checker)
		code := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}

// Readiness answers 200 only when no component is unhealthy. The body is
// the same as /health.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return Health(serviceName, checker)
}

// Liveness answers 200 while the process can serve requests at all.
func Liveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}

func check(ctx context.Context, serviceName string, checker HealthChecker) HealthResponse {
	resp := HealthResponse{
		Status:    component.StatusHealthy,
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
	}
	if checker == nil {
		return resp
	}
	resp.Components = checker(ctx)
	for _, h := range resp.Components {
		switch h.Status {
		case component.StatusUnhealthy:
			resp.Status = component.StatusUnhealthy
		case component.StatusDegraded:
			if resp.Status == component.StatusHealthy {
				resp.Status = component.StatusDegraded
			}
		}
	}
	return resp
}
