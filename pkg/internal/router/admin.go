package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// RegisterAdminRoutes 注册管理、审核与统计路由.
func RegisterAdminRoutes(g *gin.RouterGroup, opts Options) {
	admin := g.Group("/admin", opts.authRequired(), middleware.RequireAdmin())
	{
		admin.GET("/users", handle.AdminListUsers)
		admin.PUT("/users/:id/role", withOptional(opts.invalidateCache(), handle.UpdateUserRole)...)
	}

	moderation := g.Group("/moderation", opts.authRequired(), middleware.RequireModerator())
	{
		moderation.GET("/dashboard", handle.ModerationDashboard)
	}

	management := g.Group("/management", opts.authRequired(), middleware.RequireMinRole(model.RoleModerator))
	{
		management.GET("/stats", handle.ManagementStats)
	}
}
