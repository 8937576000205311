package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
)

const metricsTimeout = 5 * time.Second

// Metrics ships request count, latency and error counters to CloudWatch,
// dimensioned by route template rather than raw path. Publishing happens off
// the request path.
func Metrics(client *awspkg.MetricsClient, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !client.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		dims := map[string]string{
			"Service": service,
			"Method":  c.Request.Method,
			"Path":    route,
			"Status":  StatusClass(status),
		}
		go recordHTTP(client, status, time.Since(start), dims)
	}
}

func recordHTTP(client *awspkg.MetricsClient, status int, latency time.Duration, dims map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsTimeout)
	defer cancel()

	_ = client.RecordCount(ctx, awspkg.MetricHTTPRequests, dims)
	_ = client.RecordLatency(ctx, awspkg.MetricHTTPLatency, latency, dims)
	if status < 400 {
		return
	}
	_ = client.RecordCount(ctx, awspkg.MetricHTTPErrors, dims)
	if status >= 500 {
		_ = client.RecordCount(ctx, awspkg.MetricHTTP5xx, dims)
	} else {
		_ = client.RecordCount(ctx, awspkg.MetricHTTP4xx, dims)
	}
}

// StatusClass buckets a status code as 2xx, 3xx, 4xx or 5xx.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "unknown"
}
