package model

import (
	"time"

	"gorm.io/gorm"
)

// Role 用户角色.
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles 按权限从低到高排列的全部角色.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin}

// Level 返回角色在层级中的位置，未知角色返回 -1.
func (r Role) Level() int {
	for i, role := range Roles {
		if role == r {
			return i
		}
	}

	return -1
}

// Valid 判断是否为已知角色.
func (r Role) Valid() bool {
	return r.Level() >= 0
}

// AtLeast 判断角色是否不低于 min.
func (r Role) AtLeast(minRole Role) bool {
	return r.Valid() && r.Level() >= minRole.Level()
}

// User 用户模型. 删除用户时级联删除其文件夹与文件.
type User struct {
	ID        string    `gorm:"primaryKey;size:36"                json:"id"`
	Name      string    `gorm:"size:100;not null"                 json:"name"`
	Age       int       `gorm:"not null;default:0"                json:"age"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"     json:"email"`
	Password  string    `gorm:"size:255;not null"                 json:"-"`
	Role      Role      `gorm:"size:32;not null;default:user;index" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Folders []Folder `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Files   []File   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 表名.
func (User) TableName() string { return "users" }

// BeforeCreate 填充主键与默认角色.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}

	if u.Role == "" {
		u.Role = RoleUser
	}

	return nil
}
