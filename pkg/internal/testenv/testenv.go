// Package testenv 为 service 与 handle 测试搭建内存存储环境.
package testenv

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/storage"
	dbc "github.com/yeisme/dataroom/pkg/internal/storage/db"
	kvc "github.com/yeisme/dataroom/pkg/internal/storage/kv"
	s3c "github.com/yeisme/dataroom/pkg/internal/storage/s3"
)

var seq atomic.Int64

// Env 测试环境.
type Env struct {
	Ctx     context.Context
	Manager *storage.Manager
	Blobs   *s3c.MemoryStore
	Config  configs.AppConfig
}

// Config 返回适合测试的配置：低 bcrypt 成本，关闭指标与事件.
func Config() configs.AppConfig {
	cfg := configs.Defaults()
	cfg.Auth.BcryptCost = 4
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Metrics.Enabled = false
	cfg.Metrics.DBMetrics = false
	cfg.Events.Enabled = false

	return cfg
}

// New 创建独立的内存 SQLite、内存对象存储与内存 KV，并注入 context.
// mutate 可在设置全局配置前修改配置.
func New(t testing.TB, mutate ...func(*configs.AppConfig)) *Env {
	t.Helper()

	cfg := Config()
	for _, fn := range mutate {
		fn(&cfg)
	}

	configs.SetConfig(cfg)

	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := dbc.New(ctx, &configs.DBConfig{
		Type:     configs.SQLite,
		Database: name,
		DSN:      dsn,
		Pool:     configs.DBPoolConfig{MaxOpen: 1, MaxIdle: 1},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := s3c.NewMemoryStore(ctx, &configs.S3Config{BucketName: "test"})
	if err != nil {
		t.Fatalf("memory s3: %v", err)
	}

	kvStore, err := kvc.NewKVStore(ctx, kvc.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("memory kv: %v", err)
	}

	mgr := &storage.Manager{
		DB: db,
		S3: s3c.NewWithStore(store, configs.S3DriverMemory, "test"),
		KV: kvc.NewWithStore(kvStore, kvc.KVTypeMemory),
	}

	t.Cleanup(func() { _ = mgr.Close() })

	mem, _ := store.(*s3c.MemoryStore)

	return &Env{
		Ctx:     ctxPkg.WithStorageManager(ctx, mgr),
		Manager: mgr,
		Blobs:   mem,
		Config:  cfg,
	}
}
