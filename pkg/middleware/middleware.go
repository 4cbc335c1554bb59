// Package middleware 提供 HTTP 中间件：认证、角色、限流、熔断、缓存、监控与追踪.
package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器注入到 request context.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
