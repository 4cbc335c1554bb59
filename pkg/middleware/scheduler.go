package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/scheduler"
)

const schedulerCtxKey = "dataroom.scheduler"

// RequireScheduler 挂在运维路由组上，未启用调度器时直接返回 503.
func RequireScheduler(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Scheduler disabled",
				"message": "Background jobs are not enabled on this instance",
			})

			return
		}

		c.Set(schedulerCtxKey, sched)
		c.Next()
	}
}

// GetScheduler 返回 RequireScheduler 注入的调度器，仅在其之后的处理器中非 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if v, ok := c.Get(schedulerCtxKey); ok {
		if sched, ok := v.(*scheduler.Scheduler); ok {
			return sched
		}
	}

	return nil
}
