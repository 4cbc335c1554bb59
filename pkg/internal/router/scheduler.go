package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/handle"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// RegisterSchedulerRoutes 注册调度器相关路由，仅管理员可用，调度器未启用时返回 503.
func RegisterSchedulerRoutes(g *gin.RouterGroup, opts Options) {
	sched := g.Group("/scheduler", opts.authRequired(), middleware.RequireAdmin(), middleware.RequireScheduler(opts.Scheduler))
	{
		sched.GET("/jobs", handle.SchedulerJobs)
		sched.POST("/jobs/stop", handle.SchedulerStopJobs)
		sched.POST("/jobs/:name/run", handle.SchedulerRunJob)
		sched.DELETE("/jobs/:id", handle.SchedulerRemoveJob)
		sched.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}
}
