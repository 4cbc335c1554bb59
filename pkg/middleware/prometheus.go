package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/metrics"
)

// unmatchedEndpoint 未命中路由的请求共用一个标签值.
const unmatchedEndpoint = "unmatched"

// PrometheusMiddleware 记录请求数、耗时、响应大小与并发数. endpoint 取路由模板，
// /files/:id 等路径不会因 ID 不同而产生新的标签. skip 中的前缀（如 /metrics 自身）不计入.
func PrometheusMiddleware(skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, skip) {
			c.Next()
			return
		}

		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedEndpoint
		}

		method := c.Request.Method

		metrics.RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

		if size := c.Writer.Size(); size > 0 {
			metrics.ResponseSize.WithLabelValues(method, endpoint).Observe(float64(size))
		}
	}
}
