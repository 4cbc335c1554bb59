package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobOrphanSweep   = "blob.orphan_sweep"
	JobStatsSnapshot = "stats.snapshot"
)

// 默认 Cron 表达式，可被 scheduler 配置覆盖.
const (
	CronOrphanSweep   = "0 * * * *"
	CronStatsSnapshot = "*/5 * * * *"
)
