package types

import "github.com/yeisme/dataroom/pkg/internal/model"

// UpdateProfileRequest 更新资料请求，字段为 nil 表示不修改.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" rule:"omitempty,displayname"`
	Age  *int    `json:"age,omitempty"  rule:"omitempty,userage"`
}

// Empty 判断是否没有任何可更新字段.
func (r *UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Age == nil
}

// UpdateRoleRequest 管理员修改角色请求.
type UpdateRoleRequest struct {
	Role model.Role `json:"role"`
}

// UserResponse 单个用户响应.
type UserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// UserListResponse 用户列表响应.
type UserListResponse struct {
	Message string       `json:"message"`
	Users   []model.User `json:"users"`
	Count   int          `json:"count"`
}

// UserStats 用户统计.
type UserStats struct {
	TotalUsers       int64                `json:"totalUsers"`
	RoleDistribution map[model.Role]int64 `json:"roleDistribution"`
}
