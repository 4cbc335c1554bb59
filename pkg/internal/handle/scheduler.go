package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/dataroom/pkg/middleware"
)

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	定时任务列表
//	@Tags		调度器
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]any
//	@Router		/api/v1/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerRunJob 立即执行指定任务.
//
//	@Summary	立即执行任务
//	@Tags		调度器
//	@Produce	json
//	@Security	BearerAuth
//	@Param		name	path		string	true	"任务名称"
//	@Success	202		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/scheduler/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)

	name := c.Param("name")
	if _, err := sched.GetJobInfoByName(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if err := sched.RunNow(name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered", "job": name})
}

// SchedulerStopJobs 停止所有任务.
//
//	@Summary	停止全部任务
//	@Tags		调度器
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]string
//	@Router		/api/v1/scheduler/jobs/stop [post]
func SchedulerStopJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)

	if err := sched.StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 根据 id 删除任务.
//
//	@Summary	删除任务
//	@Tags		调度器
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"任务 ID"
//	@Success	200	{object}	map[string]string
//	@Failure	400	{object}	map[string]string
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/scheduler/jobs/{id} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := sched.RemoveJob(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回队列中等待的任务数.
//
//	@Summary	等待中的任务数
//	@Tags		调度器
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]int
//	@Router		/api/v1/scheduler/queue/waiting [get]
func SchedulerQueueWaiting(c *gin.Context) {
	sched := middleware.GetScheduler(c)

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
