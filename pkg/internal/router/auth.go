package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// RegisterAuthRoutes 注册注册与登录路由.
func RegisterAuthRoutes(g *gin.RouterGroup, opts Options) {
	authRoutes := g.Group("/auth", middleware.AuthRateLimitMiddleware(opts.RateLimit))
	{
		authRoutes.POST("/signup", withOptional(opts.invalidateCache(), handle.Signup)...)
		authRoutes.POST("/login", handle.Login)
	}
}
