// Package storage 聚合数据库、对象存储、KV 与消息队列客户端.
//
// Example:
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//		// 处理错误
//	}
//
//	dbClient := mgr.GetDBClient()
//	s3Client := mgr.GetS3Client()
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/model"
	dbc "github.com/yeisme/dataroom/pkg/internal/storage/db"
	kvc "github.com/yeisme/dataroom/pkg/internal/storage/kv"
	mqc "github.com/yeisme/dataroom/pkg/internal/storage/mq"
	s3c "github.com/yeisme/dataroom/pkg/internal/storage/s3"
	nlog "github.com/yeisme/dataroom/pkg/log"
)

// Manager 聚合所有存储资源. MQ 可能为 nil（未启用），调用方需判空.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = NewManager(ctx, configs.GetConfig())
		if mgrErr == nil {
			nlog.Logger().Info().Msg("storage manager initialized")
		}
	})

	return mgr, mgrErr
}

// NewManager 按配置创建所有客户端. DB 先行初始化并迁移，其余客户端并发初始化.
func NewManager(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	dbi, err := dbc.New(ctx, &cfg.DB)
	if err != nil {
		return nil, err
	}

	m.DB = dbi

	if cfg.DB.AutoMigrate {
		if err := Migrate(ctx, dbi); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s3i, err := s3c.New(gctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("init s3: %w", err)
		}

		m.S3 = s3i

		return nil
	})

	g.Go(func() error {
		kvi, err := kvc.New(gctx, &cfg.KV)
		if err != nil {
			return fmt.Errorf("init kv: %w", err)
		}

		m.KV = kvi

		return nil
	})

	if cfg.MQ.Enabled {
		g.Go(func() error {
			mqi, err := mqc.New(ctx, &cfg.MQ)
			if err != nil {
				return fmt.Errorf("init mq: %w", err)
			}

			m.MQ = mqi

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = m.Close()
		return nil, err
	}

	return m, nil
}

// Migrate 自动迁移所有模型.
func Migrate(ctx context.Context, client *dbc.Client) error {
	if err := client.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// Close 关闭所有已初始化的客户端.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}

	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端，未启用时为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
