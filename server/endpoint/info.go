package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/flowview/version"
)

var startedAt = time.Now()

// InfoResponse is the body of /info.
type InfoResponse struct {
	Service string       `json:"service"`
	Build   version.Info `json:"build"`
	Uptime  string       `json:"uptime"`
}

// Info reports the service name, build information and uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service: serviceName,
			Build:   version.Get(),
			Uptime:  time.Since(startedAt).Truncate(time.Second).String(),
		})
	}
}

// RuntimeStats is the body of /metrics.
type RuntimeStats struct {
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc_bytes"`
	HeapObjects uint64 `json:"heap_objects"`
	NumGC       uint32 `json:"num_gc"`
}

// Metrics reports Go runtime statistics. Domain metrics are exported
// through OpenTelemetry, not here.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, RuntimeStats{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   m.HeapAlloc,
			HeapObjects: m.HeapObjects,
			NumGC:       m.NumGC,
		})
	}
}
