// Package kv 提供用于键值存储的接口和实现.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
)

// ErrNotFound 键不存在或已过期.
var ErrNotFound = errors.New("kv: key not found")

type Client struct {
	KVStore
	kvType KVType
}

// Type 返回底层存储类型.
func (c *Client) Type() KVType {
	return c.kvType
}

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，键不存在时返回 ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，可选过期时间.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 获取匹配 glob 模式的键，空模式表示全部.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// KVFactory 定义创建 KVStore 的工厂函数类型.
type KVFactory func(ctx context.Context, cfg *configs.KVConfig) (KVStore, error)

// kvFactories 存储 KV 类型到工厂的映射.
var kvFactories = make(map[KVType]KVFactory)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// NewKVStore 根据类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, kvType KVType, cfg *configs.KVConfig) (KVStore, error) {
	factory, exists := kvFactories[kvType]
	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", kvType)
	}

	if cfg == nil {
		cfg = &configs.KVConfig{}
	}

	return factory(ctx, cfg)
}

// New 根据配置创建 KV 客户端.
func New(ctx context.Context, cfg *configs.KVConfig) (*Client, error) {
	kvType := KVType(cfg.Type)
	if kvType == "" {
		kvType = KVTypeMemory
	}

	store, err := NewKVStore(ctx, kvType, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store, kvType: kvType}, nil
}

// NewWithStore 包装已有的 KVStore，测试中使用.
func NewWithStore(store KVStore, kvType KVType) *Client {
	return &Client{KVStore: store, kvType: kvType}
}

// PatternDeleter 可由存储实现的批量删除，缓存整体失效时避免逐键往返.
type PatternDeleter interface {
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// DeletePattern 删除匹配模式的键并返回删除数量. 存储支持批量删除时直接调用，否则逐键删除.
func DeletePattern(ctx context.Context, store KVStore, pattern string) (int, error) {
	if c, ok := store.(*Client); ok {
		store = c.KVStore
	}

	if pd, ok := store.(PatternDeleter); ok {
		return pd.DeletePattern(ctx, pattern)
	}

	keys, err := store.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}

	for i, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			return i, err
		}
	}

	return len(keys), nil
}

// matchPattern 使用 glob 语义匹配键，空模式与 "*" 匹配全部.
func matchPattern(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	ok, err := path.Match(pattern, key)

	return err == nil && ok
}
