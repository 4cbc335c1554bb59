// Package cache 提供基于键值存储的泛型缓存实现.
//
// 底层使用 sonic 做 JSON 序列化，支持 TTL 与命名空间前缀，
// GetOrSet 通过 singleflight 合并同一键的并发回源.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore, cache.WithPrefix("dr:"))
//
//	err := cache.Set(ctx, c, "user:1", user, time.Hour)
//	cached, err := cache.Get[User](ctx, c, "user:1")
//
//	user, err := cache.GetOrSet(ctx, c, "user:1", func() (User, error) {
//	    return fetchUserFromDB(1)
//	}, time.Hour)
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/dataroom/pkg/internal/storage/kv"
)

// ResponsePrefix 公共用户读接口的响应缓存键前缀.
const ResponsePrefix = "dr:resp:"

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache: miss")

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	group   singleflight.Group
}

// Option 缓存选项.
type Option func(*Cache)

// WithPrefix 为所有键添加前缀.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值，未命中时返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return zero, ErrMiss
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 获取缓存值，未命中时调用 getter 并写回. 写回失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected value type %T", v)
	}

	return value, nil
}

// DeletePattern 删除匹配 glob 模式的键（模式不含前缀）.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	_, err := kv.DeletePattern(ctx, c.kvStore, c.key(pattern))
	return err
}

// Clear 清空当前前缀下的所有键.
func (c *Cache) Clear(ctx context.Context) error {
	return c.DeletePattern(ctx, "*")
}
