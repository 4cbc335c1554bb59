package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig 缓存配置.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ProfileTTL  time.Duration `mapstructure:"profile_ttl"`  // 用户资料缓存时间
	ResponseTTL time.Duration `mapstructure:"response_ttl"` // 公开接口响应缓存时间
}

func (c *CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.profile_ttl", 5*time.Minute)
	v.SetDefault("cache.response_ttl", 30*time.Second)
}
