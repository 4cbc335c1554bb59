package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/dataroom/pkg/configs"
	nlog "github.com/yeisme/dataroom/pkg/log"
)

// MinioStore 基于 minio-go 的 S3 兼容实现.
type MinioStore struct {
	cli    *minio.Client
	bucket string
	cfg    configs.S3Config
}

// NewMinioStore 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func NewMinioStore(ctx context.Context, cfg *configs.S3Config) (Store, error) {
	c := *cfg

	endpoint := c.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		c.UseSSL = u.Scheme == "https"
		c.Endpoint = u.Host
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("dataroom", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, c.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, c.BucketName, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", c.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", c.Endpoint).Str("bucket", c.BucketName).Msg("s3 connected")

	return &MinioStore{cli: cli, bucket: c.BucketName, cfg: c}, nil
}

// Put 上传对象.
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error) {
	info, err := m.cli.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return Object{
		Key:          key,
		Size:         info.Size,
		ContentType:  contentType,
		LastModified: info.LastModified,
		URL:          m.URL(key),
	}, nil
}

// Delete 删除对象.
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.cli.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}

		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// List 列出前缀下的对象.
func (m *MinioStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object

	for info := range m.cli.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects: %w", info.Err)
		}

		out = append(out, Object{
			Key:          info.Key,
			Size:         info.Size,
			ContentType:  info.ContentType,
			LastModified: info.LastModified,
			URL:          m.URL(info.Key),
		})
	}

	return out, nil
}

// URL 返回对象的外部访问地址.
func (m *MinioStore) URL(key string) string {
	return m.cfg.ObjectURL(key)
}

// HealthCheck 通过检查 bucket 验证连接.
func (m *MinioStore) HealthCheck(ctx context.Context) error {
	ok, err := m.cli.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s not found", m.bucket)
	}

	return nil
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (m *MinioStore) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.S3DriverMinio, NewMinioStore)
}
