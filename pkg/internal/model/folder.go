package model

import (
	"time"

	"gorm.io/gorm"
)

// Folder 文件夹模型. ParentID 为 nil 表示位于根目录.
// 同一用户同一父目录下名称唯一，由服务层在事务中保证（NULL 父目录无法依赖唯一索引）.
type Folder struct {
	ID          string    `gorm:"primaryKey;size:36"                       json:"id"`
	UserID      string    `gorm:"size:36;not null;index:idx_folder_sibling" json:"userId"`
	ParentID    *string   `gorm:"size:36;index:idx_folder_sibling"          json:"parentId"`
	Name        string    `gorm:"size:255;not null;index:idx_folder_sibling" json:"name"`
	Description string    `gorm:"type:text"                                json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Parent *Folder `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 表名.
func (Folder) TableName() string { return "folders" }

// BeforeCreate 填充主键.
func (f *Folder) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = newID()
	}

	return nil
}

// IsRoot 判断是否位于根目录.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
