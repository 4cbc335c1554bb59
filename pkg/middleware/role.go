package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/model"
)

// GetRole 从 gin.Context 获取当前请求角色，缺失时回退到 request context.
func GetRole(c *gin.Context) model.Role {
	if v, ok := c.Get(ContextRoleKey); ok {
		if r, ok := v.(model.Role); ok {
			return r
		}
	}

	if id, ok := ctxPkg.GetIdentity(c.Request.Context()); ok {
		return id.Role
	}

	return ""
}

// RequireRoles 要求角色属于 roles 之一，不满足返回 403.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	required := strings.Join(names, ", ")

	return func(c *gin.Context) {
		r := GetRole(c)
		if r == "" {
			forbidden(c, "User role not found in token")
			return
		}

		for _, allowed := range roles {
			if r == allowed {
				c.Next()
				return
			}
		}

		forbidden(c, fmt.Sprintf("Access denied. Required role(s): %s. Your role: %s", required, r))
	}
}

// RequireMinRole 要求角色层级不低于 minRole，未知角色一律拒绝.
func RequireMinRole(minRole model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := GetRole(c)
		if r == "" {
			forbidden(c, "User role not found in token")
			return
		}

		if !r.AtLeast(minRole) {
			forbidden(c, fmt.Sprintf("Access denied. Minimum required role: %s. Your role: %s", minRole, r))
			return
		}

		c.Next()
	}
}

// RequireAdmin 仅允许 admin 与 super_admin.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(model.RoleAdmin, model.RoleSuperAdmin)
}

// RequireModerator 允许 moderator 及以上角色.
func RequireModerator() gin.HandlerFunc {
	return RequireRoles(model.RoleModerator, model.RoleAdmin, model.RoleSuperAdmin)
}

func forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": msg})
}
