// Package model 定义持久化到数据库的 GORM 模型.
package model

import (
	"github.com/google/uuid"
)

// All 返回需要迁移的全部模型.
func All() []any {
	return []any{&User{}, &Folder{}, &File{}}
}

// newID 生成主键.
func newID() string {
	return uuid.NewString()
}
