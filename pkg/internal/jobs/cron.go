// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/storage"
	"github.com/yeisme/dataroom/pkg/log"
	"github.com/yeisme/dataroom/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每小时清理没有文件记录引用的对象
//   - 每 5 分钟刷新数据量统计指标
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg *configs.SchedulerConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用.
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	grace := cfg.OrphanGrace
	if grace <= 0 {
		grace = time.Hour
	}

	if err := sched.AddCron(baseCtx, JobOrphanSweep, cronOr(cfg.OrphanSweepCron, CronOrphanSweep), func(ctx context.Context) error {
		return runOrphanSweep(ctx, grace)
	}); err != nil {
		return err
	}

	return sched.AddCron(baseCtx, JobStatsSnapshot, cronOr(cfg.StatsCron, CronStatsSnapshot), runStatsSnapshot)
}

func cronOr(expr, fallback string) string {
	if expr == "" {
		return fallback
	}

	return expr
}

// runOrphanSweep 删除早于宽限期且无文件记录的对象.
func runOrphanSweep(ctx context.Context, grace time.Duration) error {
	l := log.Logger().With().Str("job", JobOrphanSweep).Logger()

	res, err := service.NewStatsService(ctx).SweepOrphans(ctx, grace)
	if err != nil {
		return err
	}

	if res.Deleted > 0 {
		l.Info().Int("scanned", res.Scanned).Int("deleted", res.Deleted).Msg("orphan blobs removed")
	}

	return nil
}

// runStatsSnapshot 刷新统计指标.
func runStatsSnapshot(ctx context.Context) error {
	l := log.Logger().With().Str("job", JobStatsSnapshot).Logger()

	snap, err := service.NewStatsService(ctx).Snapshot(ctx)
	if err != nil {
		return err
	}

	l.Debug().
		Int64("users", snap.Users).
		Int64("folders", snap.Folders).
		Int64("files", snap.Files).
		Int64("stored_bytes", snap.StoredBytes).
		Msg("stats snapshot")

	return nil
}
