// Package router 将处理器绑定到 gin 路由组，认证与角色校验在此装配.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/cache"
	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/handle"
	"github.com/yeisme/dataroom/pkg/middleware"
	"github.com/yeisme/dataroom/pkg/scheduler"
)

// Options 路由依赖.
type Options struct {
	Issuer *auth.Issuer
	// Cache 为 nil 时公开接口不使用响应缓存.
	Cache    *cache.Cache
	CacheTTL time.Duration
	// RateLimit 用于注册与登录接口的单独限流.
	RateLimit configs.RateLimitConfig
	// Scheduler 为 nil 时运维任务接口返回 503.
	Scheduler *scheduler.Scheduler
}

// authRequired 返回 JWT 认证中间件.
func (o Options) authRequired() gin.HandlerFunc {
	return middleware.JWTAuth(o.Issuer)
}

// responseCache 返回公开只读接口使用的响应缓存中间件，未配置缓存时为 nil.
func (o Options) responseCache() gin.HandlerFunc {
	if o.Cache == nil {
		return nil
	}

	cfg := middleware.DefaultCacheConfig(o.Cache)
	if o.CacheTTL > 0 {
		cfg.TTL = o.CacheTTL
	}

	return middleware.CacheMiddleware(cfg)
}

// invalidateCache 返回用户数据写接口使用的缓存失效中间件，未配置缓存时为 nil.
func (o Options) invalidateCache() gin.HandlerFunc {
	if o.Cache == nil {
		return nil
	}

	return middleware.InvalidateResponseCache(o.Cache)
}

// withOptional 将非 nil 中间件按顺序置于处理器之前.
func withOptional(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}

	return []gin.HandlerFunc{mw, h}
}

// Register 注册全部业务路由. 业务路由位于根路径，运维路由位于 /api/v1.
func Register(e *gin.Engine, opts Options) {
	RegisterAuthRoutes(e.Group(""), opts)
	RegisterUserRoutes(e.Group(""), opts)
	RegisterFilesRoutes(e.Group(""), opts)
	RegisterFolderRoutes(e.Group(""), opts)
	RegisterAdminRoutes(e.Group(""), opts)
	RegisterStatsRoutes(e.Group(""), opts)

	v1 := e.Group("/api/v1")
	RegisterHealthCheckRoute(v1)
	RegisterSchedulerRoutes(v1, opts)

	RegisterSwaggerRoute(e)

	e.NoRoute(handle.NotFound)
}
