package metrics

import (
	"strconv"
	"time"

	"github.com/Popolzen/linkalias/internal/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics считает запросы и их длительность по шаблону маршрута
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// шаблон маршрута вместо пути, чтобы алиасы не плодили серии
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
