package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/dataroom/pkg/configs"
)

// GroupcacheKV 基于 Groupcache 的 KV 实现.
// 本节点写入的键保存在本地 map 中并优先读取；未命中时通过 group 向对等节点查询.
type GroupcacheKV struct {
	cache *groupcache.Group
	peers *groupcache.HTTPPool
	data  map[string][]byte
	mu    sync.RWMutex
}

// groupcacheGetter 实现 groupcache.Getter 接口，供对等节点回源.
type groupcacheGetter struct {
	kv *GroupcacheKV
}

func (g *groupcacheGetter) Get(_ context.Context, key string, dest groupcache.Sink) error {
	value, ok := g.kv.local(key)
	if !ok {
		return ErrNotFound
	}

	if err := dest.SetBytes(value); err != nil {
		return fmt.Errorf("failed to set bytes to sink: %w", err)
	}

	return nil
}

var (
	peerPoolOnce sync.Once
	peerPool     *groupcache.HTTPPool
)

// NewGroupcacheKV 创建 Groupcache KV 实例.
func NewGroupcacheKV(_ context.Context, cfg *configs.KVConfig) (KVStore, error) {
	gcConfig := cfg.Groupcache
	if gcConfig.Name == "" {
		gcConfig.Name = "dataroom-cache"
	}

	if gcConfig.CacheBytes <= 0 {
		gcConfig.CacheBytes = 64 << 20
	}

	kv := &GroupcacheKV{data: make(map[string][]byte)}

	// groupcache 的 group 名称全局唯一，重复创建会 panic
	if existing := groupcache.GetGroup(gcConfig.Name); existing != nil {
		return nil, fmt.Errorf("groupcache group %q already exists", gcConfig.Name)
	}

	kv.cache = groupcache.NewGroup(gcConfig.Name, gcConfig.CacheBytes, &groupcacheGetter{kv: kv})

	if len(gcConfig.Peers) > 0 {
		peerPoolOnce.Do(func() {
			peerPool = groupcache.NewHTTPPoolOpts(gcConfig.Self, &groupcache.HTTPPoolOptions{})
		})
		peerPool.Set(gcConfig.Peers...)
		kv.peers = peerPool
	}

	return kv, nil
}

// local 读取本节点数据并处理过期.
func (g *GroupcacheKV) local(key string) ([]byte, bool) {
	g.mu.RLock()
	raw, ok := g.data[key]
	g.mu.RUnlock()

	if !ok {
		return nil, false
	}

	value, expired, err := decodeWithTTL(raw, time.Now())
	if err != nil || expired {
		g.mu.Lock()
		delete(g.data, key)
		g.mu.Unlock()

		return nil, false
	}

	return value, true
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := g.local(key); ok {
		out := make([]byte, len(value))
		copy(out, value)

		return out, nil
	}

	if g.peers == nil {
		return nil, ErrNotFound
	}

	var data []byte
	if err := g.cache.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, ErrNotFound
	}

	return data, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	stored := make([]byte, len(encoded))
	copy(stored, encoded)

	g.mu.Lock()
	g.data[key] = stored
	g.mu.Unlock()

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, key)

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := g.local(key)
	return ok, nil
}

// Keys 获取本节点匹配模式的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	candidates := make([]string, 0, len(g.data))

	for key := range g.data {
		if matchPattern(pattern, key) {
			candidates = append(candidates, key)
		}
	}
	g.mu.RUnlock()

	keys := candidates[:0]
	for _, key := range candidates {
		if _, ok := g.local(key); ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close 关闭缓存，Groupcache 没有显式的关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
