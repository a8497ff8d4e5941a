package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GinPrometheusMiddleware собирает http_requests_total и http_request_duration_seconds.
// В метку route попадает шаблон маршрута (/products/:id), а не сырой путь.
func GinPrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
		defer HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HttpRequestsTotal.WithLabelValues(serviceName, c.Request.Method, route, status).Inc()
		HttpRequestDuration.WithLabelValues(serviceName, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler отдаёт /metrics в формате Prometheus
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
