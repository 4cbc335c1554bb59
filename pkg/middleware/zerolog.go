package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/log"
)

// RequestIDHeader 请求 ID 头，客户端未提供时生成并回写.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "dataroom.request_id"

// quietPrefixes 下的成功请求只在 debug 级别记录，避免探针刷屏.
var quietPrefixes = []string{"/api/v1/health", "/metrics"}

// GetRequestID 返回当前请求的 ID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// GinLoggerMiddleware 为每个请求分配请求 ID，结束后按状态码选择日志级别: 5xx 为 error，4xx 为 warn.
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}

		c.Set(requestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Request = c.Request.WithContext(ctxPkg.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		status := c.Writer.Status()
		logger := log.Logger()

		var event *zerolog.Event

		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		case hasAnyPrefix(c.Request.URL.Path, quietPrefixes):
			event = logger.Debug()
		default:
			event = logger.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		event = event.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if q := c.Request.URL.RawQuery; q != "" {
			event = event.Str("query", q)
		}

		if uid := GetUserID(c); uid != "" {
			event = event.Str("user_id", uid).Str("role", string(GetRole(c)))
		}

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			event = event.Str("trace_id", sc.TraceID().String())
		}

		if len(c.Errors) > 0 {
			event = event.Str("error", strings.TrimSpace(c.Errors.String()))
		}

		event.Msg("http request")
	}
}
