package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// moderationActions 审核面板可用操作.
var moderationActions = []string{"View reports", "Moderate content", "Manage user warnings"}

// AdminListUsers 管理员查看全部用户.
//
//	@Summary		全部用户（管理员）
//	@Tags			管理
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.UserListResponse
//	@Failure		403	{object}	types.ErrorResponse
//	@Router			/admin/users [get]
func AdminListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := service.NewUserService(ctx).List(ctx)
	if err != nil {
		respondError(c, err, "admin list users")
		return
	}

	c.JSON(http.StatusOK, types.UserListResponse{Message: "All users retrieved (admin access)", Users: users, Count: len(users)})
}

// UpdateUserRole 修改用户角色.
//
//	@Summary		修改用户角色
//	@Tags			管理
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"用户 ID"
//	@Param			body	body		types.UpdateRoleRequest	true	"新角色"
//	@Success		200		{object}	types.UserResponse
//	@Failure		400		{object}	map[string]any	"角色无效，附带 validRoles"
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/admin/users/{id}/role [put]
func UpdateUserRole(c *gin.Context) {
	var req types.UpdateRoleRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	user, err := service.NewUserService(ctx).UpdateRole(ctx, middleware.GetUserID(c), c.Param("id"), req.Role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "validRoles": model.Roles})
			return
		}

		respondError(c, err, "update role")

		return
	}

	c.JSON(http.StatusOK, types.UserResponse{Message: "User role updated successfully", User: user})
}

// ModerationDashboard 审核面板.
//
//	@Summary		审核面板
//	@Tags			管理
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.ModerationDashboardResponse
//	@Failure		403	{object}	types.ErrorResponse
//	@Router			/moderation/dashboard [get]
func ModerationDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, types.ModerationDashboardResponse{
		Message:          "Moderation dashboard access granted",
		UserRole:         string(middleware.GetRole(c)),
		AvailableActions: moderationActions,
	})
}

// ManagementStats 用户统计.
//
//	@Summary		管理统计
//	@Tags			管理
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.ManagementStatsResponse
//	@Failure		403	{object}	types.ErrorResponse
//	@Router			/management/stats [get]
func ManagementStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := service.NewUserService(ctx).Stats(ctx)
	if err != nil {
		respondError(c, err, "management stats")
		return
	}

	c.JSON(http.StatusOK, types.ManagementStatsResponse{
		Message:    "Management statistics",
		UserRole:   string(middleware.GetRole(c)),
		Statistics: stats,
	})
}
