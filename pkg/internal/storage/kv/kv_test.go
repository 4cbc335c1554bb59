package kv_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/storage/kv"
)

// TestMemoryKVBasic 测试内存 KV 的读写删除.
func TestMemoryKVBasic(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "dr:profile:u1", []byte("alice"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "dr:profile:u1")
	if err != nil || string(got) != "alice" {
		t.Fatalf("get = %q, %v", got, err)
	}

	// 返回值为副本
	got[0] = 'X'

	again, _ := store.Get(ctx, "dr:profile:u1")
	if string(again) != "alice" {
		t.Errorf("stored value mutated: %q", again)
	}

	if err := store.Delete(ctx, "dr:profile:u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := store.Exists(ctx, "dr:profile:u1"); ok {
		t.Error("key should not exist after delete")
	}
}

// TestMemoryKVTTL 测试过期键不可读也不被列出.
func TestMemoryKVTTL(t *testing.T) {
	ctx := context.Background()
	store, _ := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)

	if err := store.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "short"); !ok {
		t.Fatal("key should exist before expiry")
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}

	if keys, _ := store.Keys(ctx, "*"); len(keys) != 0 {
		t.Errorf("expired key listed: %v", keys)
	}
}

// TestKeysPattern 测试 glob 模式匹配.
func TestKeysPattern(t *testing.T) {
	ctx := context.Background()

	client, err := kv.New(ctx, &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if client.Type() != kv.KVTypeMemory {
		t.Errorf("unexpected type %s", client.Type())
	}

	for _, k := range []string{"dr:profile:a", "dr:profile:b", "dr:resp:x"} {
		_ = client.Set(ctx, k, []byte("1"), 0)
	}

	keys, err := client.Keys(ctx, "dr:profile:*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	slices.Sort(keys)

	if !slices.Equal(keys, []string{"dr:profile:a", "dr:profile:b"}) {
		t.Errorf("keys = %v", keys)
	}
}

// TestDeletePattern 测试批量删除只影响匹配前缀，并能透过 Client 使用存储的批量实现.
func TestDeletePattern(t *testing.T) {
	ctx := context.Background()

	client, err := kv.New(ctx, &configs.KVConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, ok := client.KVStore.(kv.PatternDeleter); !ok {
		t.Fatal("memory store should support pattern delete")
	}

	for i := range 5 {
		_ = client.Set(ctx, fmt.Sprintf("dr:resp:%d", i), []byte("r"), 0)
	}

	_ = client.Set(ctx, "dr:profile:u1", []byte("p"), 0)

	n, err := kv.DeletePattern(ctx, client, "dr:resp:*")
	if err != nil {
		t.Fatalf("delete pattern: %v", err)
	}

	if n != 5 {
		t.Errorf("deleted = %d, want 5", n)
	}

	if keys, _ := client.Keys(ctx, "*"); !slices.Equal(keys, []string{"dr:profile:u1"}) {
		t.Errorf("remaining keys = %v", keys)
	}
}

// TestDeletePatternFallback 测试不支持批量删除的存储逐键删除.
func TestDeletePatternFallback(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.KVConfig{Groupcache: configs.GroupcacheKVConfig{Name: "test-groupcache-pattern", CacheBytes: 1 << 20}}

	store, err := kv.NewKVStore(ctx, kv.KVTypeGroupcache, cfg)
	if err != nil {
		t.Fatalf("create groupcache kv: %v", err)
	}

	if _, ok := store.(kv.PatternDeleter); ok {
		t.Skip("groupcache store implements pattern delete")
	}

	_ = store.Set(ctx, "dr:resp:a", []byte("1"), 0)
	_ = store.Set(ctx, "dr:resp:b", []byte("1"), 0)
	_ = store.Set(ctx, "dr:profile:a", []byte("1"), 0)

	n, err := kv.DeletePattern(ctx, store, "dr:resp:*")
	if err != nil || n != 2 {
		t.Fatalf("delete pattern = %d, %v", n, err)
	}

	if _, err := store.Get(ctx, "dr:resp:a"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("dr:resp:a should be gone, got %v", err)
	}

	if _, err := store.Get(ctx, "dr:profile:a"); err != nil {
		t.Errorf("dr:profile:a should remain, got %v", err)
	}
}

// TestGroupcacheKVLocal 测试无对等节点时 groupcache 的本地读写与删除.
func TestGroupcacheKVLocal(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.KVConfig{Groupcache: configs.GroupcacheKVConfig{Name: "test-groupcache-local", CacheBytes: 1 << 20}}

	store, err := kv.NewKVStore(ctx, kv.KVTypeGroupcache, cfg)
	if err != nil {
		t.Fatalf("create groupcache kv: %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "v2" {
		t.Fatalf("get = %q, %v", got, err)
	}

	_ = store.Delete(ctx, "k")

	if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if _, err := kv.NewKVStore(ctx, kv.KVTypeGroupcache, cfg); err == nil {
		t.Error("expected error when creating a duplicate group")
	}
}

// TestUnsupportedType 测试未知类型返回错误.
func TestUnsupportedType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), kv.KVType("etcd"), nil); err == nil {
		t.Error("expected error for unsupported kv type")
	}
}

// benchStores 返回参与基准的存储. Redis 与 NATS 需通过环境变量显式开启.
func benchStores(b *testing.B) map[string]kv.KVStore {
	ctx := context.Background()
	stores := make(map[string]kv.KVStore)

	candidates := []struct {
		name string
		typ  kv.KVType
		env  string
		cfg  *configs.KVConfig
	}{
		{"memory", kv.KVTypeMemory, "", nil},
		{"groupcache", kv.KVTypeGroupcache, "", &configs.KVConfig{Groupcache: configs.GroupcacheKVConfig{
			Name: "bench-groupcache", CacheBytes: 32 << 20,
		}}},
		{"redis", kv.KVTypeRedis, "REDIS_ADDR", &configs.KVConfig{Redis: configs.RedisKVConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		}}},
		{"nats", kv.KVTypeNATS, "NATS_URL", &configs.KVConfig{NATS: configs.NATSKVConfig{
			URL: os.Getenv("NATS_URL"), Bucket: "bench_kv",
		}}},
	}

	for _, c := range candidates {
		if c.env != "" && os.Getenv(c.env) == "" {
			continue
		}

		store, err := kv.NewKVStore(ctx, c.typ, c.cfg)
		if err != nil {
			b.Logf("skip %s: %v", c.name, err)
			continue
		}

		b.Cleanup(func() { _ = store.Close() })
		stores[c.name] = store
	}

	return stores
}

// BenchmarkProfileCache 模拟资料缓存的写入、命中与失效.
func BenchmarkProfileCache(b *testing.B) {
	ctx := context.Background()
	payload := []byte(`{"id":"0196","email":"bench@example.com","name":"Bench","role":"user"}`)

	for name, store := range benchStores(b) {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; b.Loop(); i++ {
				key := fmt.Sprintf("dr:profile:%d", i)
				if err := store.Set(ctx, key, payload, time.Minute); err != nil {
					b.Fatalf("set: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete: %v", err)
				}
			}
		})

		b.Run(name+"/parallel", func(b *testing.B) {
			var ctr atomic.Uint64

			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					key := fmt.Sprintf("dr:profile:p%d", ctr.Add(1))
					if err := store.Set(ctx, key, payload, 0); err != nil {
						b.Fatalf("set: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get: %v", err)
					}
				}
			})
		})
	}
}
