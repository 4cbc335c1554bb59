package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/types"
	nlog "github.com/yeisme/dataroom/pkg/log"
	"github.com/yeisme/dataroom/pkg/metrics"
	"github.com/yeisme/dataroom/pkg/tracing"
)

// sweepBatch 每批查询的对象键数量.
const sweepBatch = 200

// StatsService 数据量统计与存储维护.
type StatsService struct {
	deps
}

// NewStatsService 从 context 构造 StatsService.
func NewStatsService(ctx context.Context) *StatsService {
	return &StatsService{deps: depsFromContext(ctx)}
}

// Snapshot 统计用户、文件夹与文件数量并更新 Prometheus 指标.
func (s *StatsService) Snapshot(ctx context.Context) (*types.StatsSnapshot, error) {
	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	snap := &types.StatsSnapshot{TakenAt: time.Now().UTC()}

	if err := db.Model(&model.User{}).Count(&snap.Users).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if err := db.Model(&model.Folder{}).Count(&snap.Folders).Error; err != nil {
		return nil, fmt.Errorf("count folders: %w", err)
	}

	var agg struct {
		Files       int64
		PublicFiles int64
		StoredBytes int64
	}

	err = db.Model(&model.File{}).
		Select("COUNT(*) AS files, COALESCE(SUM(is_public), 0) AS public_files, COALESCE(SUM(size), 0) AS stored_bytes").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate files: %w", err)
	}

	snap.Files, snap.PublicFiles, snap.StoredBytes = agg.Files, agg.PublicFiles, agg.StoredBytes

	metrics.EntityTotals.WithLabelValues("users").Set(float64(snap.Users))
	metrics.EntityTotals.WithLabelValues("folders").Set(float64(snap.Folders))
	metrics.EntityTotals.WithLabelValues("files").Set(float64(snap.Files))
	metrics.EntityTotals.WithLabelValues("public_files").Set(float64(snap.PublicFiles))
	metrics.StoredBytes.Set(float64(snap.StoredBytes))

	return snap, nil
}

// SweepOrphans 删除没有文件记录引用且早于宽限期的对象.
// 宽限期用于跳过正在上传、元数据尚未写入的对象.
func (s *StatsService) SweepOrphans(ctx context.Context, grace time.Duration) (_ *types.SweepResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "blob.orphan_sweep")
	defer func() { tracing.EndSpan(span, err) }()

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, err
	}

	if s.blobs == nil {
		return nil, ErrNotConfigured
	}

	objs, err := s.blobs.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	res := &types.SweepResult{Scanned: len(objs)}
	cutoff := time.Now().Add(-grace)
	candidates := make([]string, 0, len(objs))

	for _, obj := range objs {
		if obj.LastModified.After(cutoff) {
			res.Skipped++
			continue
		}

		candidates = append(candidates, obj.Key)
	}

	logger := nlog.Named("sweeper")

	for start := 0; start < len(candidates); start += sweepBatch {
		batch := candidates[start:min(start+sweepBatch, len(candidates))]

		var referenced []string
		if err := db.Model(&model.File{}).Where("blob_pathname IN ?", batch).Pluck("blob_pathname", &referenced).Error; err != nil {
			return res, fmt.Errorf("load referenced blobs: %w", err)
		}

		known := make(map[string]struct{}, len(referenced))
		for _, k := range referenced {
			known[k] = struct{}{}
		}

		for _, key := range batch {
			if _, ok := known[key]; ok {
				continue
			}

			if err := s.blobs.Delete(ctx, key); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("delete orphan blob failed")
				continue
			}

			res.Deleted++
		}
	}

	metrics.OrphansSwept.Add(float64(res.Deleted))

	return res, nil
}
