package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/middleware"
)

// GetProfile 获取当前用户资料.
//
//	@Summary		获取个人资料
//	@Tags			用户
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	types.UserResponse
//	@Failure		401	{object}	types.ErrorResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/users/profile [get]
func GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := service.NewUserService(ctx).Profile(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, types.UserResponse{Message: "Profile retrieved successfully", User: user})
}

// UpdateProfile 更新当前用户的姓名或年龄.
//
//	@Summary		更新个人资料
//	@Tags			用户
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		types.UpdateProfileRequest	true	"姓名与年龄，至少一项"
//	@Success		200		{object}	types.UserResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/users/profile [put]
func UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ctx := c.Request.Context()

	user, err := service.NewUserService(ctx).UpdateProfile(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, types.UserResponse{Message: "Profile updated successfully", User: user})
}

// ListUsers 公开的用户列表.
//
//	@Summary		用户列表
//	@Tags			用户
//	@Produce		json
//	@Success		200	{object}	types.UserListResponse
//	@Router			/users [get]
func ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := service.NewUserService(ctx).List(ctx)
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, types.UserListResponse{Message: "Users retrieved successfully", Users: users, Count: len(users)})
}

// GetUser 按 ID 查询用户.
//
//	@Summary		查询用户
//	@Tags			用户
//	@Produce		json
//	@Param			id	path		string	true	"用户 ID"
//	@Success		200	{object}	types.UserResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/users/{id} [get]
func GetUser(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := service.NewUserService(ctx).Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, types.UserResponse{Message: "User retrieved successfully", User: user})
}
