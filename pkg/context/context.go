// Package context 在 context.Context 中携带存储客户端、请求方身份与请求 ID，服务层据此取得依赖并输出关联日志.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/storage"
	dbc "github.com/yeisme/dataroom/pkg/internal/storage/db"
	kvc "github.com/yeisme/dataroom/pkg/internal/storage/kv"
	mqc "github.com/yeisme/dataroom/pkg/internal/storage/mq"
	s3c "github.com/yeisme/dataroom/pkg/internal/storage/s3"
	"github.com/yeisme/dataroom/pkg/log"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	IdentityKey       ContextKey = "identity"
	RequestIDKey      ContextKey = "requestID"
)

// Identity 已认证请求方的身份.
type Identity struct {
	UserID string
	Role   model.Role
}

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetS3Client 从 context 中获取 S3 客户端.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithIdentity 将请求方身份存入 context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentity 从 context 中获取请求方身份.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// WithRequestID 记录请求 ID，日志与事件用它串联同一次请求.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID 返回请求 ID，不在请求内时为空.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Logger 返回附带 trace_id、request_id 与 user_id 的 logger，缺失的字段不输出.
func Logger(ctx context.Context) zerolog.Logger {
	lc := log.Logger().With()

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		lc = lc.Str("trace_id", sc.TraceID().String())
	}

	if id := GetRequestID(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}

	if id, ok := GetIdentity(ctx); ok {
		lc = lc.Str("user_id", id.UserID)
	}

	return lc.Logger()
}
