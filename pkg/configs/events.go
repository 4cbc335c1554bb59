package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分领域）.
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	User    UserEventsConfig   `mapstructure:"user"`
	File    FileEventsConfig   `mapstructure:"file"`
	Folder  FolderEventsConfig `mapstructure:"folder"`
}

// UserEventsConfig 用户领域事件开关.
type UserEventsConfig struct {
	SignedUp    bool `mapstructure:"signed_up"`
	RoleChanged bool `mapstructure:"role_changed"`
}

// FileEventsConfig 文件领域事件开关.
type FileEventsConfig struct {
	Uploaded bool `mapstructure:"uploaded"`
	Updated  bool `mapstructure:"updated"`
	Deleted  bool `mapstructure:"deleted"`
	Moved    bool `mapstructure:"moved"`
}

// FolderEventsConfig 文件夹领域事件开关.
type FolderEventsConfig struct {
	Created bool `mapstructure:"created"`
	Renamed bool `mapstructure:"renamed"`
	Moved   bool `mapstructure:"moved"`
	Deleted bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.user.signed_up", true)
	v.SetDefault("events.user.role_changed", true)

	v.SetDefault("events.file.uploaded", true)
	v.SetDefault("events.file.deleted", true)
	v.SetDefault("events.file.updated", false)
	v.SetDefault("events.file.moved", false)

	v.SetDefault("events.folder.created", false)
	v.SetDefault("events.folder.renamed", false)
	v.SetDefault("events.folder.moved", false)
	v.SetDefault("events.folder.deleted", true)
}
