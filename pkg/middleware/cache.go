package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/dataroom/pkg/cache"
	"github.com/yeisme/dataroom/pkg/log"
)

const (
	DefaultMaxBodyBytes = 1 << 20
	defaultResponseTTL  = 30 * time.Second
	defaultBypassHeader = "X-Cache-Bypass"
)

// CacheConfig 响应缓存中间件配置.
type CacheConfig struct {
	Cache *appcache.Cache
	TTL   time.Duration

	// BypassHeader 请求带有该头时不读也不写缓存.
	BypassHeader string
	// RespectCacheControl 为 true 时响应的 no-store/private 禁止缓存，max-age 覆盖 TTL.
	RespectCacheControl bool
	// MaxBodyBytes 超过该大小的响应不缓存，0 表示不限制.
	MaxBodyBytes int
}

// DefaultCacheConfig 返回公开用户读接口使用的默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:               c,
		TTL:                 defaultResponseTTL,
		BypassHeader:        defaultBypassHeader,
		RespectCacheControl: true,
		MaxBodyBytes:        DefaultMaxBodyBytes,
	}
}

// cachedResponse 存入 KV 的响应.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"`
}

// CacheMiddleware 缓存公开只读接口的 200 响应，命中时回放响应并支持 If-None-Match.
// 只处理 GET 与 HEAD，缓存读写失败时按未命中处理.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultResponseTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		if cfg.BypassHeader != "" && c.GetHeader(cfg.BypassHeader) != "" {
			c.Next()
			return
		}

		key := responseKey(c)
		if replay(c, cfg.Cache, key) {
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, limit: cfg.MaxBodyBytes}
		c.Writer = w
		c.Header("X-Cache", "MISS")
		c.Next()

		store(c, cfg, key, w)
	}
}

// InvalidateResponseCache 写操作成功后清空响应缓存，保证公开用户列表与详情及时反映资料和角色变化.
func InvalidateResponseCache(cache *appcache.Cache) gin.HandlerFunc {
	logger := log.Named("cache")

	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		if err := cache.Clear(context.WithoutCancel(c.Request.Context())); err != nil {
			logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("invalidate response cache failed")
		}
	}
}

// responseKey 由方法、实际路径与排序后的查询参数哈希得到，键中只含字母数字.
func responseKey(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(' ')
	b.WriteString(c.Request.URL.Path)

	q := c.Request.URL.Query()
	if len(q) > 0 {
		names := make([]string, 0, len(q))
		for name := range q {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			values := append([]string(nil), q[name]...)
			sort.Strings(values)
			b.WriteByte('&')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strings.Join(values, ","))
		}
	}

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// captureWriter 同时写出并记录响应体，超出 limit 后停止记录.
type captureWriter struct {
	gin.ResponseWriter

	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(p) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(p)
		}
	}

	return w.ResponseWriter.Write(p)
}

func replay(c *gin.Context, cache *appcache.Cache, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", strconv.FormatInt(int64(time.Since(time.Unix(0, entry.StoredAt)).Seconds()), 10))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.AbortWithStatus(http.StatusNotModified)
		return true
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// cacheControlTTL 返回 max-age 覆盖值，以及响应是否允许缓存.
func cacheControlTTL(h http.Header) (time.Duration, bool) {
	cc := strings.ToLower(h.Get("Cache-Control"))
	if cc == "" {
		return 0, true
	}

	if strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
		return 0, false
	}

	for _, directive := range strings.Split(cc, ",") {
		v, ok := strings.CutPrefix(strings.TrimSpace(directive), "max-age=")
		if !ok {
			continue
		}

		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second, true
		}
	}

	return 0, true
}

func store(c *gin.Context, cfg CacheConfig, key string, w *captureWriter) {
	status := c.Writer.Status()
	if status != http.StatusOK || w.overflow || c.Request.Method == http.MethodHead {
		return
	}

	ttl := cfg.TTL
	if cfg.RespectCacheControl {
		override, ok := cacheControlTTL(c.Writer.Header())
		if !ok {
			return
		}

		if override > 0 {
			ttl = override
		}
	}

	header := make(map[string]string)

	for k, v := range c.Writer.Header() {
		if _, skip := volatileHeaders[k]; skip || len(v) == 0 {
			continue
		}

		header[k] = v[0]
	}

	body := w.buf.Bytes()

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", strconv.FormatUint(xxhash.Sum64(body), 16))
	}

	entry := cachedResponse{Status: status, Header: header, Body: body, ETag: etag, StoredAt: time.Now().UnixNano()}
	_ = appcache.Set(context.WithoutCancel(c.Request.Context()), cfg.Cache, key, entry, ttl)
}

// volatileHeaders 不随缓存条目保存的响应头.
var volatileHeaders = map[string]struct{}{
	"X-Cache":        {},
	"Age":            {},
	"Content-Length": {},
	"Date":           {},
}
