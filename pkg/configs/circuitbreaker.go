package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig 熔断器配置. 窗口内 5xx 比例超过 FailureRate 时打开，
// OpenTimeout 后进入半开状态并放行 HalfOpenRequests 个探测请求.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureRate      float64       `mapstructure:"failure_rate"       rule:"gt=0,max=1"`
	MinRequests      uint32        `mapstructure:"min_requests"       rule:"gte=1"`
	Window           time.Duration `mapstructure:"window"             rule:"gte=0"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"       rule:"gt=0"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests" rule:"gte=1"`
	// Scopes 按路径前缀隔离熔断器，/files 依赖对象存储，故障时不拖垮用户接口.
	Scopes []string `mapstructure:"scopes"`
	// SkipPaths 前缀匹配的请求不经过熔断器.
	SkipPaths []string `mapstructure:"skip_paths"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"enabled":            false,
		"failure_rate":       0.5,
		"min_requests":       20,
		"window":             time.Minute,
		"open_timeout":       30 * time.Second,
		"half_open_requests": 5,
		"scopes":             []string{"/files"},
		"skip_paths":         []string{"/api/v1/health", "/metrics", "/swagger"},
	}

	for k, val := range defaults {
		v.SetDefault("circuit_breaker."+k, val)
	}
}
