package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
)

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore 进程内对象存储，用于本地开发与测试.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

// NewMemoryStore 创建内存存储.
func NewMemoryStore(_ context.Context, cfg *configs.S3Config) (Store, error) {
	base := "memory://" + cfg.BucketName
	if cfg.PublicURL != "" {
		base = strings.TrimRight(cfg.PublicURL, "/")
	}

	return &MemoryStore{objects: make(map[string]memoryObject), baseURL: base}, nil
}

// Put 保存对象.
func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, fmt.Errorf("read object %s: %w", key, err)
	}

	now := time.Now().UTC()

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType, modified: now}
	m.mu.Unlock()

	return Object{Key: key, Size: int64(len(data)), ContentType: contentType, LastModified: now, URL: m.URL(key)}, nil
}

// Get 读取对象内容.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}

	return bytes.Clone(obj.data), nil
}

// Delete 删除对象.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()

	return nil
}

// List 列出前缀下的对象，按 key 排序.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Object, 0, len(m.objects))

	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		out = append(out, Object{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.modified,
			URL:          m.URL(key),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// Touch 修改对象的最后修改时间，测试中模拟旧对象.
func (m *MemoryStore) Touch(key string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.objects[key]; ok {
		obj.modified = at
		m.objects[key] = obj
	}
}

// URL 返回对象地址.
func (m *MemoryStore) URL(key string) string {
	return m.baseURL + "/" + key
}

// HealthCheck 内存存储始终可用.
func (m *MemoryStore) HealthCheck(context.Context) error {
	return nil
}

// Close 无操作.
func (m *MemoryStore) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.S3DriverMemory, NewMemoryStore)
}
