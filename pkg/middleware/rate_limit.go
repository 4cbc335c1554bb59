package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/dataroom/pkg/configs"
)

// limiterStore 按键维护令牌桶，闲置超过 idleTTL 的键在清理时回收.
type limiterStore struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	entries map[string]*limiterEntry
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const defaultLimiterIdleTTL = 10 * time.Minute

func newLimiterStore(bucket configs.RateBucket, idleTTL time.Duration) *limiterStore {
	if idleTTL <= 0 {
		idleTTL = defaultLimiterIdleTTL
	}

	burst := bucket.Burst
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(bucket.RPS)))
	}

	return &limiterStore{
		rps:     rate.Limit(bucket.RPS),
		burst:   burst,
		idleTTL: idleTTL,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

// reserve 返回键是否放行，拒绝时给出建议的重试等待时间.
func (s *limiterStore) reserve(key string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.lastSeen = now

	if e.lim.AllowN(now, 1) {
		return true, 0
	}

	r := e.lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)

	return false, wait
}

// sweep 回收闲置键，返回回收数量.
func (s *limiterStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	n := 0

	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			n++
		}
	}

	return n
}

func (s *limiterStore) startJanitor() {
	go func() {
		ticker := time.NewTicker(s.idleTTL)
		defer ticker.Stop()

		for range ticker.C {
			s.sweep()
		}
	}()
}

// keyFunc 根据配置返回限流键的提取函数.
func keyFunc(mode string) func(c *gin.Context) string {
	switch {
	case mode == "global" || mode == "":
		return func(*gin.Context) string { return "global" }
	case mode == "token":
		return func(c *gin.Context) string {
			if tok, ok := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix); ok && tok != "" {
				return "tok:" + strconv.FormatUint(xxhash.Sum64String(tok), 16)
			}

			return "ip:" + clientIP(c)
		}
	case strings.HasPrefix(mode, "header:"):
		h := strings.TrimPrefix(mode, "header:")

		return func(c *gin.Context) string {
			if v := c.GetHeader(h); v != "" {
				return "hdr:" + v
			}

			return "ip:" + clientIP(c)
		}
	default:
		return func(c *gin.Context) string { return "ip:" + clientIP(c) }
	}
}

func limitHandler(store *limiterStore, key func(*gin.Context) string, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := store.reserve(key(c))
		if !ok {
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "message": msg})

			return
		}

		c.Next()
	}
}

// RateLimitMiddleware 全局限流中间件，未启用时直接放行.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Global.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	store := newLimiterStore(cfg.Global, cfg.IdleTTL)

	if mode != "global" && mode != "" {
		store.startJanitor()
	}

	return limitHandler(store, keyFunc(mode), "Request rate limit exceeded, please try again later")
}

// AuthRateLimitMiddleware 注册与登录接口的按 IP 限流，Auth.RPS 为 0 或总开关关闭时放行.
func AuthRateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Auth.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := newLimiterStore(cfg.Auth, cfg.IdleTTL)
	store.startJanitor()

	return limitHandler(store, keyFunc("ip"), "Too many authentication attempts, please try again later")
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
