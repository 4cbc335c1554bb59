package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/dataroom/pkg/configs"
)

// NATS KV 键只允许 [-/_=.A-Za-z0-9]，缓存键使用 ':' 分段，存取时互相替换.
var (
	natsKeyEncoder = strings.NewReplacer(":", "=")
	natsKeyDecoder = strings.NewReplacer("=", ":")
)

// NATSKV 基于 JetStream KV bucket 的存储. bucket 本身不设 TTL，过期由值内的时间戳判断.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKV 连接 NATS 并打开 bucket，不存在时创建.
func NewNATSKV(_ context.Context, cfg *configs.KVConfig) (KVStore, error) {
	opts := []nats.Option{nats.Name("dataroom-kv")}
	if cfg.NATS.User != "" {
		opts = append(opts, nats.UserInfo(cfg.NATS.User, cfg.NATS.Password))
	}

	conn, err := nats.Connect(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	bucket, err := js.KeyValue(cfg.NATS.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		bucket, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      cfg.NATS.Bucket,
			Description: "dataroom profile and response cache",
		})
	}

	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open kv bucket %q: %w", cfg.NATS.Bucket, err)
	}

	return &NATSKV{kv: bucket, conn: conn}, nil
}

func encodeNATSKey(key string) string { return natsKeyEncoder.Replace(key) }

func decodeNATSKey(key string) string { return natsKeyDecoder.Replace(key) }

// load 读取并解码条目，过期条目顺带删除.
func (n *NATSKV) load(key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	val, expired, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return nil, ErrNotFound
	}

	return val, nil
}

func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	return n.load(encodeNATSKey(key))
}

func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(encodeNATSKey(key), encoded); err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(encodeNATSKey(key)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}

func (n *NATSKV) Exists(_ context.Context, key string) (bool, error) {
	_, err := n.load(encodeNATSKey(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 返回解码后的键，模式匹配作用在解码后的键上.
func (n *NATSKV) Keys(_ context.Context, pattern string) ([]string, error) {
	stored, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	keys := make([]string, 0, len(stored))

	for _, raw := range stored {
		key := decodeNATSKey(raw)
		if !matchPattern(pattern, key) {
			continue
		}

		if _, err := n.load(raw); errors.Is(err, ErrNotFound) {
			continue
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
