package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/configs"
)

func limitedEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	e := gin.New()
	e.POST("/auth/login", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	return e
}

func hit(e *gin.Engine, remote, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remote

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func TestAuthRateLimit(t *testing.T) {
	e := limitedEngine(AuthRateLimitMiddleware(configs.RateLimitConfig{Enabled: true, Auth: configs.RateBucket{RPS: 0.01, Burst: 2}}))

	for i := range 2 {
		if w := hit(e, "10.0.0.1:1234", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}

	w := hit(e, "10.0.0.1:1234", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Errorf("missing Retry-After header")
	}

	// 其它 IP 不受影响
	if w := hit(e, "10.0.0.2:1234", ""); w.Code != http.StatusOK {
		t.Errorf("other ip status = %d", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := limitedEngine(AuthRateLimitMiddleware(configs.RateLimitConfig{Enabled: false, Auth: configs.RateBucket{RPS: 0.01, Burst: 1}}))

	for i := range 5 {
		if w := hit(e, "10.0.0.1:1234", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}

func TestRateLimitByToken(t *testing.T) {
	e := limitedEngine(RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, Global: configs.RateBucket{RPS: 0.01, Burst: 1}, Key: "token"}))

	if w := hit(e, "10.0.0.1:1234", "token-a"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if w := hit(e, "10.0.0.1:1234", "token-a"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("same token status = %d, want 429", w.Code)
	}

	// 同一 IP 的不同令牌分别计数
	if w := hit(e, "10.0.0.1:1234", "token-b"); w.Code != http.StatusOK {
		t.Errorf("other token status = %d", w.Code)
	}
}

func TestLimiterStoreSweep(t *testing.T) {
	now := time.Now()
	s := newLimiterStore(configs.RateBucket{RPS: 1, Burst: 1}, time.Minute)
	s.now = func() time.Time { return now }

	s.reserve("a")
	now = now.Add(30 * time.Second)
	s.reserve("b")
	now = now.Add(45 * time.Second)

	if n := s.sweep(); n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}

	if _, ok := s.entries["b"]; !ok {
		t.Errorf("recently used key was evicted")
	}
}
