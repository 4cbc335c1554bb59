package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/types"
)

// Signup 用户注册.
//
//	@Summary		用户注册
//	@Description	创建普通用户并返回访问令牌
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.SignupRequest	true	"注册信息"
//	@Success		200		{object}	types.AuthResponse	"注册成功"
//	@Failure		400		{object}	types.ErrorResponse	"参数错误"
//	@Failure		409		{object}	types.ErrorResponse	"邮箱已存在"
//	@Failure		500		{object}	types.ErrorResponse	"服务器内部错误"
//	@Router			/auth/signup [post]
func Signup(c *gin.Context) {
	var req types.SignupRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ctx := c.Request.Context()

	user, token, err := service.NewAuthService(ctx).Signup(ctx, &req)
	if err != nil {
		respondError(c, err, "signup")
		return
	}

	c.JSON(http.StatusOK, types.AuthResponse{Message: "User created successfully", User: user, Token: token})
}

// Login 用户登录.
//
//	@Summary		用户登录
//	@Description	校验邮箱与密码并返回访问令牌
//	@Tags			认证
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.LoginRequest	true	"登录信息"
//	@Success		200		{object}	types.AuthResponse	"登录成功"
//	@Failure		400		{object}	types.ErrorResponse	"参数错误"
//	@Failure		401		{object}	types.ErrorResponse	"凭据无效"
//	@Router			/auth/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ctx := c.Request.Context()

	user, token, err := service.NewAuthService(ctx).Login(ctx, &req)
	if err != nil {
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, types.AuthResponse{Message: "Login successful", User: user, Token: token})
}
