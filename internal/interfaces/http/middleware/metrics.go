package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder is satisfied by *telemetry.Metrics
type RequestRecorder interface {
	RequestStarted() func(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics records the count, latency and in-flight gauge of requests,
// labelled by route pattern so that ids never become label values.
func HTTPMetrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		done := recorder.RequestStarted()
		defer func() {
			done(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
