package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// RegisterStatsRoutes 注册数据量快照路由，仅管理员可用.
func RegisterStatsRoutes(g *gin.RouterGroup, opts Options) {
	g.GET("/admin/stats", opts.authRequired(), middleware.RequireAdmin(), handle.StatsSnapshot)
}
