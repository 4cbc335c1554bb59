package configs

import (
	"time"

	"github.com/spf13/viper"
)

// SchedulerConfig 定时任务配置.
type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	OrphanSweepCron string        `mapstructure:"orphan_sweep_cron"` // 孤儿对象清理
	OrphanGrace     time.Duration `mapstructure:"orphan_grace"`      // 对象上传后多久才视为孤儿
	StatsCron       string        `mapstructure:"stats_cron"`        // 统计快照
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.orphan_sweep_cron", "0 * * * *")
	v.SetDefault("scheduler.orphan_grace", time.Hour)
	v.SetDefault("scheduler.stats_cron", "*/5 * * * *")
}
