package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request count, latency and response size per route
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start), size)
	}
}

// Timer measures one provider call
type Timer struct {
	start     time.Time
	metrics   *Metrics
	provider  string
	operation string
}

// NewTimer starts timing a provider call
func NewTimer(metrics *Metrics, provider, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		provider:  provider,
		operation: operation,
	}
}

// Stop records the call with its outcome label
func (t *Timer) Stop(outcome string) {
	t.metrics.RecordProviderCall(t.provider, t.operation, outcome, time.Since(t.start))
}
