package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
)

// RegisterUserRoutes 注册用户路由. 列表与详情公开并走响应缓存.
func RegisterUserRoutes(g *gin.RouterGroup, opts Options) {
	users := g.Group("/users")

	// 需要认证的个人资料，修改后公开读接口的缓存失效
	invalidate := opts.invalidateCache()
	profile := users.Group("", opts.authRequired())
	{
		profile.GET("/profile", handle.GetProfile)
		profile.PUT("/profile", withOptional(invalidate, handle.UpdateProfile)...)
		profile.PUT("/update", withOptional(invalidate, handle.UpdateProfile)...)
	}

	cached := opts.responseCache()
	users.GET("", withOptional(cached, handle.ListUsers)...)
	users.GET("/:id", withOptional(cached, handle.GetUser)...)
}
