// Package configs 管理应用程序配置，包括Metrics的配置信息.
package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`         // 是否启用Metrics
	Path           string            `mapstructure:"path"             rule:"startswith=/"`
	Pprof          bool              `mapstructure:"pprof"`           // 是否挂载 /debug/pprof
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // 是否收集运行时指标
	DBMetrics      bool              `mapstructure:"db_metrics"`      // 是否注册 GORM 指标
	Labels         map[string]string `mapstructure:"labels"`          // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.db_metrics", false)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "dataroom",
	})
}
