package types

import "github.com/yeisme/dataroom/pkg/internal/model"

// SignupRequest 注册请求.
type SignupRequest struct {
	Name     string `json:"name"     rule:"displayname"`
	Email    string `json:"email"    rule:"email,max=255"`
	Password string `json:"password" rule:"min=8,max=128"`
	Age      int    `json:"age"      rule:"omitempty,userage"`
}

// LoginRequest 登录请求.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse 注册与登录成功响应.
type AuthResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}
