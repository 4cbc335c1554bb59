package kv

import (
	"context"
	"sync"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time // 零值表示永不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，过期键在读取时惰性删除.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ *configs.KVConfig) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

func (m *MemoryKV) load(key string) (memoryEntry, bool) {
	v, ok := m.data.Load(key)
	if !ok {
		return memoryEntry{}, false
	}

	entry, ok := v.(memoryEntry)
	if !ok {
		return memoryEntry{}, false
	}

	if entry.expired(m.now()) {
		m.data.CompareAndDelete(key, v)

		return memoryEntry{}, false
	}

	return entry, true
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := m.load(key)
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(entry.value))
	copy(result, entry.value)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	entry := memoryEntry{value: data}
	if ttl > 0 {
		entry.expireAt = m.now().Add(ttl)
	}

	m.data.Store(key, entry)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	return ok, nil
}

// Keys 获取匹配模式的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)
	now := m.now()

	m.data.Range(func(key, value any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if entry, ok := value.(memoryEntry); ok && entry.expired(now) {
			m.data.CompareAndDelete(key, value)
			return true
		}

		if matchPattern(pattern, k) {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// DeletePattern 一次遍历删除匹配的键，已过期的键不计数.
func (m *MemoryKV) DeletePattern(_ context.Context, pattern string) (int, error) {
	deleted := 0
	now := m.now()

	m.data.Range(func(key, value any) bool {
		k, ok := key.(string)
		if !ok || !matchPattern(pattern, k) {
			return true
		}

		if m.data.CompareAndDelete(key, value) {
			if entry, ok := value.(memoryEntry); !ok || !entry.expired(now) {
				deleted++
			}
		}

		return true
	})

	return deleted, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
