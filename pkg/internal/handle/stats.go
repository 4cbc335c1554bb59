package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
)

// StatsSnapshot 立即统计全局数据量并刷新指标.
//
//	@Summary		数据量快照
//	@Tags			管理
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.StatsSnapshot
//	@Failure		403	{object}	types.ErrorResponse
//	@Router			/admin/stats [get]
func StatsSnapshot(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := service.NewStatsService(ctx).Snapshot(ctx)
	if err != nil {
		respondError(c, err, "stats snapshot")
		return
	}

	c.JSON(http.StatusOK, snap)
}
