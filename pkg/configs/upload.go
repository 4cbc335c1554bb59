package configs

import (
	"github.com/spf13/viper"
)

const (
	// DefaultMaxUploadSize 单个文件大小上限 10MB.
	DefaultMaxUploadSize int64 = 10 * 1024 * 1024
	// DefaultMaxDescriptionLength 文件描述最大长度.
	DefaultMaxDescriptionLength = 500
	// DefaultMaxTags 单个文件最多标签数.
	DefaultMaxTags = 10
	// DefaultMaxTagLength 单个标签最大长度.
	DefaultMaxTagLength = 30
)

// DefaultAllowedMIMETypes 允许上传的 MIME 类型.
var DefaultAllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UploadConfig 上传限制.
type UploadConfig struct {
	MaxSize              int64    `mapstructure:"max_size"               rule:"min=1"`
	AllowedMIMETypes     []string `mapstructure:"allowed_mime_types"     rule:"min=1"`
	MaxDescriptionLength int      `mapstructure:"max_description_length" rule:"min=1"`
	MaxTags              int      `mapstructure:"max_tags"               rule:"min=0"`
	MaxTagLength         int      `mapstructure:"max_tag_length"         rule:"min=1"`
}

// IsAllowedMIME 判断 MIME 类型是否在白名单中.
func (c *UploadConfig) IsAllowedMIME(mime string) bool {
	for _, m := range c.AllowedMIMETypes {
		if m == mime {
			return true
		}
	}

	return false
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_size", DefaultMaxUploadSize)
	v.SetDefault("upload.allowed_mime_types", DefaultAllowedMIMETypes)
	v.SetDefault("upload.max_description_length", DefaultMaxDescriptionLength)
	v.SetDefault("upload.max_tags", DefaultMaxTags)
	v.SetDefault("upload.max_tag_length", DefaultMaxTagLength)
}
