// Package handle 提供 HTTP 请求处理器，负责参数解析、调用 service 与错误映射.
package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/service"
)

const msgInternalError = "Internal server error"

// NotFound 未匹配任何路由时返回 JSON 格式的 404.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found", "path": c.Request.URL.Path})
}

// respondError 将 service 错误映射为 HTTP 响应，未知错误记录日志后返回 500.
func respondError(c *gin.Context, err error, action string) {
	if se := service.AsError(err); se != nil {
		body := gin.H{"error": se.Message}
		if len(se.Fields) > 0 {
			body["fields"] = se.Fields
		}

		c.JSON(se.Status, body)

		return
	}

	l := ctxPkg.Logger(c.Request.Context())
	l.Error().Err(err).
		Str("action", action).
		Str("route", c.FullPath()).
		Msg("request failed")

	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
}

// bindJSON 解析 JSON 请求体. allowEmpty 为 true 时空请求体视为零值.
func bindJSON(c *gin.Context, dst any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	l := ctxPkg.Logger(c.Request.Context())
	l.Warn().Err(err).Str("route", c.FullPath()).Msg("invalid request body")
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})

	return false
}
