package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/auth"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/model"
)

const (
	// ContextUserIDKey gin.Context 中保存用户 ID 的键.
	ContextUserIDKey = "userId"
	// ContextRoleKey gin.Context 中保存用户角色的键.
	ContextRoleKey = "userRole"

	bearerPrefix = "Bearer "
)

// JWTAuth 校验 Authorization: Bearer <token>，并把身份注入 gin.Context 与 request.Context.
func JWTAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Authorization header with Bearer token is required",
			})

			return
		}

		claims, err := issuer.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid token",
				"message": "The provided token is invalid or expired",
			})

			return
		}

		id := ctxPkg.Identity{UserID: claims.UserID, Role: model.Role(claims.Role)}

		c.Set(ContextUserIDKey, id.UserID)
		c.Set(ContextRoleKey, id.Role)
		c.Request = c.Request.WithContext(ctxPkg.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// GetUserID 返回当前请求的用户 ID，未认证时返回空串.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}

	if id, ok := ctxPkg.GetIdentity(c.Request.Context()); ok {
		return id.UserID
	}

	return ""
}
