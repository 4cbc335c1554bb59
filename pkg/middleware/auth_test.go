package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/middleware"
)

func newIssuer() *auth.Issuer {
	return auth.NewIssuer(&configs.AuthConfig{JWTSecret: "mw-secret", TokenTTL: time.Hour, BcryptCost: 4})
}

func newEngine(issuer *auth.Issuer, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	e := gin.New()
	handlers := append([]gin.HandlerFunc{middleware.JWTAuth(issuer)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": middleware.GetUserID(c), "role": middleware.GetRole(c)})
	})
	e.GET("/guarded", handlers...)

	return e
}

func call(e *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

// TestJWTAuth 测试缺失、格式错误、过期与有效令牌.
func TestJWTAuth(t *testing.T) {
	issuer := newIssuer()
	e := newEngine(issuer)

	valid, err := issuer.Sign("u1", model.RoleUser)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	expired, err := newIssuer().WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Sign("u1", model.RoleUser)
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}

	other, _ := auth.NewIssuer(&configs.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}).Sign("u1", model.RoleUser)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"no bearer prefix", valid, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + other, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := call(e, tt.header); w.Code != tt.want {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

// TestRoleGuards 测试 RequireAdmin、RequireModerator 与 RequireMinRole.
func TestRoleGuards(t *testing.T) {
	issuer := newIssuer()

	tests := []struct {
		name  string
		guard gin.HandlerFunc
		role  model.Role
		want  int
	}{
		{"admin rejects user", middleware.RequireAdmin(), model.RoleUser, http.StatusForbidden},
		{"admin rejects moderator", middleware.RequireAdmin(), model.RoleModerator, http.StatusForbidden},
		{"admin allows admin", middleware.RequireAdmin(), model.RoleAdmin, http.StatusOK},
		{"admin allows super admin", middleware.RequireAdmin(), model.RoleSuperAdmin, http.StatusOK},
		{"moderator allows moderator", middleware.RequireModerator(), model.RoleModerator, http.StatusOK},
		{"moderator rejects user", middleware.RequireModerator(), model.RoleUser, http.StatusForbidden},
		{"min role allows higher", middleware.RequireMinRole(model.RoleModerator), model.RoleSuperAdmin, http.StatusOK},
		{"min role rejects lower", middleware.RequireMinRole(model.RoleAdmin), model.RoleModerator, http.StatusForbidden},
		{"min role rejects unknown", middleware.RequireMinRole(model.RoleUser), model.Role("guest"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.Sign("u1", tt.role)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}

			if w := call(newEngine(issuer, tt.guard), "Bearer "+token); w.Code != tt.want {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
