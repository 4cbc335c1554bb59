package model

import (
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// File 文件元数据模型. 二进制内容保存在对象存储中，BlobPathname 为对象键.
// IsPublic 以 0/1 存储，Tags 以 JSON 文本存储.
type File struct {
	ID           string    `gorm:"primaryKey;size:36"                                json:"id"`
	UserID       string    `gorm:"size:36;not null;index"                            json:"userId"`
	FolderID     *string   `gorm:"size:36;index"                                     json:"folderId"`
	Filename     string    `gorm:"size:512;not null"                                 json:"filename"`
	OriginalName string    `gorm:"size:512;not null"                                 json:"originalName"`
	MimeType     string    `gorm:"size:255;not null"                                 json:"mimeType"`
	Size         int64     `gorm:"not null"                                          json:"size"`
	BlobURL      string    `gorm:"size:2048;not null"                                json:"blobUrl"`
	BlobPathname string    `gorm:"size:1024;not null;uniqueIndex"                    json:"blobPathname"`
	IsPublic     int       `gorm:"not null;default:0"                                json:"isPublic"`
	Description  string    `gorm:"type:text"                                         json:"description"`
	Tags         string    `gorm:"type:text"                                         json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Folder *Folder `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 表名.
func (File) TableName() string { return "files" }

// BeforeCreate 填充主键.
func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = newID()
	}

	return nil
}

// Public 返回是否公开.
func (f *File) Public() bool {
	return f.IsPublic == 1
}

// SetPublic 设置公开状态.
func (f *File) SetPublic(public bool) {
	f.IsPublic = BoolToInt(public)
}

// TagList 解析标签，空值或非法 JSON 返回空切片.
func (f *File) TagList() []string {
	if f.Tags == "" {
		return []string{}
	}

	var tags []string
	if err := sonic.UnmarshalString(f.Tags, &tags); err != nil || tags == nil {
		return []string{}
	}

	return tags
}

// SetTags 序列化标签，空切片存为空字符串.
func (f *File) SetTags(tags []string) error {
	if len(tags) == 0 {
		f.Tags = ""
		return nil
	}

	s, err := sonic.MarshalString(tags)
	if err != nil {
		return err
	}

	f.Tags = s

	return nil
}

// BoolToInt 将布尔值转换为 0/1.
func BoolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
