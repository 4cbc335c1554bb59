package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/configs"
)

// TestCircuitBreakerScopes 测试 /files 熔断后其它路由与健康检查不受影响.
func TestCircuitBreakerScopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	e := gin.New()
	e.Use(CircuitBreakerMiddleware(configs.CircuitBreakerConfig{
		Enabled:          true,
		FailureRate:      0.5,
		MinRequests:      2,
		Window:           time.Minute,
		OpenTimeout:      time.Minute,
		HalfOpenRequests: 1,
		Scopes:           []string{"/files"},
		SkipPaths:        []string{"/api/v1/health"},
	}))
	e.GET("/files/my-files", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	e.GET("/folders", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/api/v1/health/s3", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get := func(path string) int {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		return w.Code
	}

	for range 2 {
		if code := get("/files/my-files"); code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", code)
		}
	}

	if code := get("/files/my-files"); code != http.StatusServiceUnavailable {
		t.Fatalf("open breaker status = %d, want 503", code)
	}

	if code := get("/folders"); code != http.StatusOK {
		t.Errorf("other scope status = %d, want 200", code)
	}

	for range 3 {
		if code := get("/api/v1/health/s3"); code != http.StatusInternalServerError {
			t.Errorf("skipped path status = %d, want 500", code)
		}
	}
}
