// Package s3 处理对象存储操作，提供 MinIO(S3 兼容) 与内存两种驱动.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/yeisme/dataroom/pkg/configs"
)

// ErrObjectNotFound 对象不存在.
var ErrObjectNotFound = errors.New("s3: object not found")

// Object 对象元信息.
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	URL          string
}

// Store 定义对象存储所需的最小操作集.
type Store interface {
	// Put 上传对象并返回其元信息，size 为 -1 表示未知长度.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	// Delete 删除对象，对象不存在时不报错.
	Delete(ctx context.Context, key string) error
	// List 列出指定前缀下的所有对象.
	List(ctx context.Context, prefix string) ([]Object, error)
	// URL 返回对象的访问地址.
	URL(key string) string
	// HealthCheck 检查存储是否可用.
	HealthCheck(ctx context.Context) error
	// Close 释放资源.
	Close() error
}

// Client 包装具体的 Store 实现.
type Client struct {
	Store
	driver configs.S3Driver
	bucket string
}

// Driver 返回驱动名称.
func (c *Client) Driver() configs.S3Driver {
	return c.driver
}

// Bucket 返回存储桶名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// Factory 创建 Store 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.S3Config) (Store, error)

var factories = map[configs.S3Driver]Factory{}

// RegisterFactory 注册驱动工厂.
func RegisterFactory(driver configs.S3Driver, f Factory) {
	factories[driver] = f
}

// GetRegisteredDrivers 返回已注册的驱动列表.
func GetRegisteredDrivers() []configs.S3Driver {
	drivers := make([]configs.S3Driver, 0, len(factories))
	for d := range factories {
		drivers = append(drivers, d)
	}

	sort.Slice(drivers, func(i, j int) bool { return drivers[i] < drivers[j] })

	return drivers
}

// New 根据配置创建对象存储客户端.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = configs.S3DriverMinio
	}

	factory, ok := factories[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported s3 driver: %s", driver)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{Store: store, driver: driver, bucket: cfg.BucketName}, nil
}

// NewWithStore 包装已有的 Store，测试中使用.
func NewWithStore(store Store, driver configs.S3Driver, bucket string) *Client {
	return &Client{Store: store, driver: driver, bucket: bucket}
}
