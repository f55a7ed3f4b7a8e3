package middleware

import (
	"strconv"
	"time"

	"traffic-forecast-api/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics counts requests and observes their latency by route template.
// Unmatched paths are grouped under "unmatched".
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
