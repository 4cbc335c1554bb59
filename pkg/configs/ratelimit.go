package configs

import (
	"time"

	"github.com/spf13/viper"
)

// RateBucket 令牌桶参数. RPS 为 0 表示不限流，Burst 为 0 时取 ceil(RPS).
type RateBucket struct {
	RPS   float64 `mapstructure:"rps"   rule:"gte=0"`
	Burst int     `mapstructure:"burst" rule:"gte=0"`
}

// RateLimitConfig 速率限制配置. Enabled 为总开关.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Global 作用于全部请求，维度由 Key 决定.
	Global RateBucket `mapstructure:"global"`
	// Key 可选 global、ip、token（缺失时按 IP）、header:Header-Name.
	Key string `mapstructure:"key" rule:"omitempty,oneof=global ip token|startswith=header:"`
	// Auth 作用于注册与登录，始终按 IP 计数，用于抵御口令爆破.
	Auth RateBucket `mapstructure:"auth"`
	// IdleTTL 闲置超过该时长的 limiter 会被回收.
	IdleTTL time.Duration `mapstructure:"idle_ttl" rule:"gte=0"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"enabled":      false,
		"global.rps":   50.0,
		"global.burst": 100,
		"key":          "ip",
		"auth.rps":     1.0,
		"auth.burst":   10,
		"idle_ttl":     10 * time.Minute,
	}

	for k, val := range defaults {
		v.SetDefault("rate_limit."+k, val)
	}
}
