package configs

import (
	"github.com/spf13/viper"
)

// LogConfig 日志配置. 控制台默认输出彩色文本，文件输出为 JSON.
type LogConfig struct {
	Level   string `mapstructure:"level"        rule:"oneof=trace debug info warn error"`
	Console bool   `mapstructure:"console"`
	JSON    bool   `mapstructure:"json"` // 控制台输出 JSON，容器环境下便于采集

	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"    rule:"required_if=EnableFile true"`
	MaxSize    int    `mapstructure:"max_size_mb"  rule:"min=0"`
	MaxBackups int    `mapstructure:"max_backups"  rule:"min=0"`
	MaxAge     int    `mapstructure:"max_age_days" rule:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.json", false)

	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/dataroom.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
