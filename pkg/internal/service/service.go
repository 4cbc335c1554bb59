// Package service 实现认证、用户、文件与文件夹的业务逻辑.
//
// 服务从 context 中的 storage.Manager 取得数据库、对象存储、KV 与 MQ 客户端，
// 失败时返回 *Error（携带 HTTP 状态码）或包装后的内部错误.
package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/cache"
	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	kvc "github.com/yeisme/dataroom/pkg/internal/storage/kv"
	s3c "github.com/yeisme/dataroom/pkg/internal/storage/s3"
	"github.com/yeisme/dataroom/pkg/queue"
)

// cachePrefix 业务缓存键前缀.
const cachePrefix = "dr:"

// caches 每个 KV 客户端共享一个 Cache，使 singleflight 跨请求生效.
var caches sync.Map

// sharedCache 返回与 KV 客户端绑定的 Cache，客户端为 nil 时返回 nil.
func sharedCache(kv *kvc.Client) *cache.Cache {
	if kv == nil {
		return nil
	}

	if c, ok := caches.Load(kv); ok {
		return c.(*cache.Cache)
	}

	c, _ := caches.LoadOrStore(kv, cache.NewCache(kv, cache.WithPrefix(cachePrefix)))

	return c.(*cache.Cache)
}

// deps 服务公共依赖.
type deps struct {
	db     *gorm.DB
	blobs  *s3c.Client
	cache  *cache.Cache
	events *queue.Publisher
	cfg    *configs.AppConfig
}

func depsFromContext(ctx context.Context) deps {
	cfg := configs.GetConfig()
	d := deps{cfg: cfg}

	if dbc := ctxPkg.GetDBClient(ctx); dbc != nil {
		d.db = dbc.GetDB()
	}

	d.blobs = ctxPkg.GetS3Client(ctx)
	d.cache = sharedCache(ctxPkg.GetKVClient(ctx))

	// 未启用 MQ 时 Publisher 丢弃所有事件.
	if mqc := ctxPkg.GetMQClient(ctx); mqc != nil {
		d.events = queue.NewPublisher(mqc, cfg.Events)
	} else {
		d.events = queue.NewPublisher(nil, cfg.Events)
	}

	return d
}

// dbx 返回绑定 ctx 的 DB 会话.
func (d deps) dbx(ctx context.Context) (*gorm.DB, error) {
	if d.db == nil {
		return nil, ErrNotConfigured
	}

	return d.db.WithContext(ctx), nil
}
