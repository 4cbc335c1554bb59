package router_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/cache"
	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/router"
	"github.com/yeisme/dataroom/pkg/internal/testenv"
	"github.com/yeisme/dataroom/pkg/middleware"
	"github.com/yeisme/dataroom/pkg/scheduler"
)

type server struct {
	env    *testenv.Env
	engine *gin.Engine
	issuer *auth.Issuer
}

func newServer(t *testing.T, mutate ...func(*router.Options)) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testenv.New(t)
	issuer := auth.NewIssuer(&env.Config.Auth)

	opts := router.Options{
		Issuer: issuer,
		Cache:  cache.NewCache(env.Manager.KV, cache.WithPrefix(cache.ResponsePrefix)),
	}
	for _, m := range mutate {
		m(&opts)
	}

	e := gin.New()
	e.Use(middleware.StorageMiddleware(env.Manager))
	router.Register(e, opts)

	return &server{env: env, engine: e, issuer: issuer}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}

		buf.Write(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.serve(t, req, token)
}

func (s *server) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && w.Code != http.StatusFound {
		_ = sonic.Unmarshal(w.Body.Bytes(), &out)
	}

	return w, out
}

// signup 注册并返回用户 ID 与令牌.
func (s *server) signup(t *testing.T, email string) (string, string) {
	t.Helper()

	w, out := s.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Tester", "email": email, "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup status = %d body=%s", w.Code, w.Body.String())
	}

	user, _ := out["user"].(map[string]any)
	id, _ := user["id"].(string)
	token, _ := out["token"].(string)

	if id == "" || token == "" {
		t.Fatalf("signup response missing id or token: %s", w.Body.String())
	}

	return id, token
}

// tokenAs 将用户角色改为 role 并签发对应令牌.
func (s *server) tokenAs(t *testing.T, userID string, role model.Role) string {
	t.Helper()

	if err := s.env.Manager.DB.Model(&model.User{}).Where("id = ?", userID).Update("role", role).Error; err != nil {
		t.Fatalf("set role: %v", err)
	}

	token, err := s.issuer.Sign(userID, role)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	return token
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()

	if w.Code != code {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, code, w.Body.String())
	}
}

// TestSignupLoginFlow 测试注册、登录与读取资料.
func TestSignupLoginFlow(t *testing.T) {
	s := newServer(t)
	_, token := s.signup(t, "flow@example.com")

	w, out := s.do(t, http.MethodGet, "/users/profile", token, nil)
	expectCode(t, w, http.StatusOK)

	if user, _ := out["user"].(map[string]any); user["email"] != "flow@example.com" {
		t.Errorf("profile = %s", w.Body.String())
	}

	w, out = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "FLOW@example.com", "password": "password123"})
	expectCode(t, w, http.StatusOK)

	if out["message"] != "Login successful" || out["token"] == "" {
		t.Errorf("login = %s", w.Body.String())
	}

	w, out = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "flow@example.com", "password": "wrong-password"})
	expectCode(t, w, http.StatusUnauthorized)

	if out["error"] != "Invalid credentials" {
		t.Errorf("error = %v", out["error"])
	}

	w, _ = s.do(t, http.MethodPut, "/users/update", token, map[string]any{"name": "Renamed"})
	expectCode(t, w, http.StatusOK)
}

// TestInvalidBody 测试非法 JSON 返回 400.
func TestInvalidBody(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w, out := s.serve(t, req, "")
	expectCode(t, w, http.StatusBadRequest)

	if out["error"] != "Invalid request body" {
		t.Errorf("error = %v", out["error"])
	}
}

// TestSignupFieldErrors 测试校验失败时返回首条信息与字段映射.
func TestSignupFieldErrors(t *testing.T) {
	s := newServer(t)

	w, out := s.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "A", "email": "not-an-email", "password": "password1",
	})
	expectCode(t, w, http.StatusBadRequest)

	if out["error"] != "name must be at least 2 characters" {
		t.Errorf("error = %v", out["error"])
	}

	fields, ok := out["fields"].(map[string]any)
	if !ok || fields["email"] != "email must be a valid email address" || fields["name"] == nil {
		t.Errorf("fields = %v", out["fields"])
	}
}

// TestSignupLongPassword 测试 100 个字符的密码可以注册并登录.
func TestSignupLongPassword(t *testing.T) {
	s := newServer(t)
	password := strings.Repeat("a", 100)

	w, _ := s.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"name": "Long Password", "email": "long@example.com", "password": password,
	})
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "long@example.com", "password": password})
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "long@example.com", "password": password[:72]})
	expectCode(t, w, http.StatusUnauthorized)
}

// TestAuthRequired 测试缺少或无效令牌时的 401 响应体.
func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	w, out := s.do(t, http.MethodGet, "/files/my-files", "", nil)
	expectCode(t, w, http.StatusUnauthorized)

	if out["error"] != "Unauthorized" {
		t.Errorf("error = %v", out["error"])
	}

	w, out = s.do(t, http.MethodGet, "/folders", "not-a-token", nil)
	expectCode(t, w, http.StatusUnauthorized)

	if out["error"] != "Invalid token" {
		t.Errorf("error = %v", out["error"])
	}

	w, out = s.do(t, http.MethodGet, "/no/such/route", "", nil)
	expectCode(t, w, http.StatusNotFound)

	if out["error"] != "Route not found" {
		t.Errorf("error = %v", out["error"])
	}
}

// TestRoleGuards 测试管理、审核与统计接口的角色限制.
func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	userID, userToken := s.signup(t, "plain@example.com")
	modID, _ := s.signup(t, "mod@example.com")
	adminID, _ := s.signup(t, "admin@example.com")

	modToken := s.tokenAs(t, modID, model.RoleModerator)
	adminToken := s.tokenAs(t, adminID, model.RoleAdmin)

	w, out := s.do(t, http.MethodGet, "/admin/users", userToken, nil)
	expectCode(t, w, http.StatusForbidden)

	if out["error"] != "Forbidden" {
		t.Errorf("error = %v", out["error"])
	}

	w, _ = s.do(t, http.MethodGet, "/admin/users", adminToken, nil)
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodGet, "/moderation/dashboard", userToken, nil)
	expectCode(t, w, http.StatusForbidden)

	w, _ = s.do(t, http.MethodGet, "/moderation/dashboard", modToken, nil)
	expectCode(t, w, http.StatusOK)

	w, out = s.do(t, http.MethodGet, "/management/stats", modToken, nil)
	expectCode(t, w, http.StatusOK)

	if stats, _ := out["statistics"].(map[string]any); stats["totalUsers"] != float64(3) {
		t.Errorf("stats = %s", w.Body.String())
	}

	w, _ = s.do(t, http.MethodGet, "/admin/stats", modToken, nil)
	expectCode(t, w, http.StatusForbidden)

	w, out = s.do(t, http.MethodPut, "/admin/users/"+userID+"/role", adminToken, map[string]any{"role": "owner"})
	expectCode(t, w, http.StatusBadRequest)

	if roles, _ := out["validRoles"].([]any); len(roles) != len(model.Roles) {
		t.Errorf("validRoles = %v", out["validRoles"])
	}

	w, out = s.do(t, http.MethodPut, "/admin/users/"+userID+"/role", adminToken, map[string]any{"role": "moderator"})
	expectCode(t, w, http.StatusOK)

	if user, _ := out["user"].(map[string]any); user["role"] != "moderator" {
		t.Errorf("user = %v", out["user"])
	}
}

func uploadRequest(t *testing.T, name, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}

	_, _ = part.Write(data)

	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}

	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

// TestUploadAndPublicAccess 测试上传、公开文件重定向与私有文件不可见.
func TestUploadAndPublicAccess(t *testing.T) {
	s := newServer(t)
	_, token := s.signup(t, "owner@example.com")

	w, out := s.serve(t, uploadRequest(t, "Report.TXT", "text/plain", []byte("hello"), map[string]string{
		"isPublic": "true", "tags": "a, b", "description": "quarterly",
	}), token)
	expectCode(t, w, http.StatusCreated)

	file, _ := out["file"].(map[string]any)
	if file["isPublic"] != true || file["originalName"] != "Report.TXT" {
		t.Fatalf("file = %s", w.Body.String())
	}

	if tags, _ := file["tags"].([]any); len(tags) != 2 {
		t.Errorf("tags = %v", file["tags"])
	}

	publicID, _ := file["id"].(string)

	w, _ = s.do(t, http.MethodGet, "/files/public/"+publicID, "", nil)
	expectCode(t, w, http.StatusFound)

	if loc := w.Header().Get("Location"); loc != file["blobUrl"] {
		t.Errorf("Location = %q, want %v", loc, file["blobUrl"])
	}

	w, out = s.serve(t, uploadRequest(t, "secret.txt", "text/plain", []byte("x"), nil), token)
	expectCode(t, w, http.StatusCreated)

	private, _ := out["file"].(map[string]any)
	privateID, _ := private["id"].(string)

	w, _ = s.do(t, http.MethodGet, "/files/public/"+privateID, "", nil)
	expectCode(t, w, http.StatusNotFound)

	w, _ = s.serve(t, uploadRequest(t, "run.exe", "application/x-msdownload", []byte("MZ"), nil), token)
	expectCode(t, w, http.StatusBadRequest)

	w, out = s.do(t, http.MethodGet, "/files/my-files", token, nil)
	expectCode(t, w, http.StatusOK)

	if out["count"] != float64(2) {
		t.Errorf("count = %v", out["count"])
	}

	_, other := s.signup(t, "other@example.com")

	w, _ = s.do(t, http.MethodGet, "/files/file/"+privateID, other, nil)
	expectCode(t, w, http.StatusNotFound)

	w, _ = s.do(t, http.MethodDelete, "/files/file/"+privateID, token, nil)
	expectCode(t, w, http.StatusOK)
}

// TestUploadBodyLimit 测试超出限制的请求体在解析阶段即被拒绝.
func TestUploadBodyLimit(t *testing.T) {
	s := newServer(t)
	_, token := s.signup(t, "big@example.com")

	cfg := s.env.Config
	cfg.Upload.MaxSize = 512 * 1024
	configs.SetConfig(cfg)

	w, out := s.serve(t, uploadRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("x"), 2<<20), nil), token)
	expectCode(t, w, http.StatusBadRequest)

	if out["error"] != "File size exceeds limit of 0.5MB" {
		t.Errorf("error = %v", out["error"])
	}

	objs, err := s.env.Blobs.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}

	if len(objs) != 0 {
		t.Errorf("blobs = %d, want 0", len(objs))
	}
}

// TestFolderRoutes 测试文件夹创建、内容浏览、移动与删除.
func TestFolderRoutes(t *testing.T) {
	s := newServer(t)
	_, token := s.signup(t, "folders@example.com")

	w, out := s.do(t, http.MethodPost, "/folders", token, map[string]any{"name": "Projects"})
	expectCode(t, w, http.StatusOK)

	parent, _ := out["folder"].(map[string]any)
	parentID, _ := parent["id"].(string)

	w, out = s.do(t, http.MethodPost, "/folders", token, map[string]any{"name": "2024", "parentId": parentID})
	expectCode(t, w, http.StatusOK)

	child, _ := out["folder"].(map[string]any)
	childID, _ := child["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/folders", token, map[string]any{"name": "Projects"})
	expectCode(t, w, http.StatusConflict)

	w, _ = s.do(t, http.MethodGet, "/folders/root/contents", token, nil)
	expectCode(t, w, http.StatusOK)

	w, out = s.do(t, http.MethodGet, "/folders/"+childID+"/contents", token, nil)
	expectCode(t, w, http.StatusOK)

	if crumbs, _ := out["breadcrumbs"].([]any); len(crumbs) != 2 {
		t.Errorf("breadcrumbs = %v", out["breadcrumbs"])
	}

	w, out = s.do(t, http.MethodPatch, "/folders/"+parentID+"/move", token, map[string]any{"parentId": childID})
	expectCode(t, w, http.StatusBadRequest)

	if out["error"] != "Cannot move folder into itself or its descendant" {
		t.Errorf("error = %v", out["error"])
	}

	w, _ = s.do(t, http.MethodDelete, "/folders/"+parentID, token, nil)
	expectCode(t, w, http.StatusConflict)

	w, _ = s.do(t, http.MethodDelete, "/folders/"+childID, token, nil)
	expectCode(t, w, http.StatusOK)
}

// TestPublicUserReadsCached 测试公开用户列表走响应缓存.
func TestPublicUserReadsCached(t *testing.T) {
	s := newServer(t)
	userID, _ := s.signup(t, "cached@example.com")

	w, _ := s.do(t, http.MethodGet, "/users", "", nil)
	expectCode(t, w, http.StatusOK)

	keys, err := s.env.Manager.KV.Keys(s.env.Ctx, cache.ResponsePrefix+"*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	if len(keys) == 0 {
		t.Errorf("expected cached response entries")
	}

	w, _ = s.do(t, http.MethodGet, "/users/"+userID, "", nil)
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodGet, "/users/missing", "", nil)
	expectCode(t, w, http.StatusNotFound)
}

// TestProfileUpdateInvalidatesCache 测试资料修改后公开详情不再返回旧缓存.
func TestProfileUpdateInvalidatesCache(t *testing.T) {
	s := newServer(t)
	userID, token := s.signup(t, "fresh@example.com")

	w, _ := s.do(t, http.MethodGet, "/users/"+userID, "", nil)
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodGet, "/users/"+userID, "", nil)
	if got := w.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second read X-Cache = %q, want HIT", got)
	}

	w, _ = s.do(t, http.MethodPut, "/users/profile", token, map[string]any{"name": "Renamed"})
	expectCode(t, w, http.StatusOK)

	w, out := s.do(t, http.MethodGet, "/users/"+userID, "", nil)
	expectCode(t, w, http.StatusOK)

	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("read after update X-Cache = %q, want MISS", got)
	}

	user, _ := out["user"].(map[string]any)
	if user["name"] != "Renamed" {
		t.Errorf("name = %v, want Renamed", user["name"])
	}
}

// TestSchedulerRoutes 测试调度器未启用时返回 503，启用后可列出与触发任务.
func TestSchedulerRoutes(t *testing.T) {
	disabled := newServer(t)
	id, _ := disabled.signup(t, "ops-off@example.com")
	token := disabled.tokenAs(t, id, model.RoleAdmin)

	w, _ := disabled.do(t, http.MethodGet, "/api/v1/scheduler/jobs", token, nil)
	expectCode(t, w, http.StatusServiceUnavailable)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = sched.Shutdown() })

	if err := sched.AddCron(context.Background(), "noop", "0 3 * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add cron: %v", err)
	}

	s := newServer(t, func(o *router.Options) { o.Scheduler = sched })
	id, userToken := s.signup(t, "ops@example.com")
	token = s.tokenAs(t, id, model.RoleAdmin)

	w, _ = s.do(t, http.MethodGet, "/api/v1/scheduler/jobs", userToken, nil)
	expectCode(t, w, http.StatusForbidden)

	w, out := s.do(t, http.MethodGet, "/api/v1/scheduler/jobs", token, nil)
	expectCode(t, w, http.StatusOK)

	if jobs, _ := out["jobs"].([]any); len(jobs) != 1 {
		t.Errorf("jobs = %v, want 1 entry", out["jobs"])
	}

	w, _ = s.do(t, http.MethodPost, "/api/v1/scheduler/jobs/missing/run", token, nil)
	expectCode(t, w, http.StatusNotFound)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/scheduler/jobs/not-a-uuid", token, nil)
	expectCode(t, w, http.StatusBadRequest)
}

// TestHealth 测试整体健康检查只受必需依赖影响.
func TestHealth(t *testing.T) {
	s := newServer(t)

	w, out := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	expectCode(t, w, http.StatusOK)

	components, _ := out["components"].(map[string]any)
	for name, want := range map[string]string{"db": "ok", "s3": "ok", "kv": "ok", "mq": "unhealthy"} {
		c, _ := components[name].(map[string]any)
		if c["status"] != want {
			t.Errorf("%s status = %v, want %s", name, c["status"], want)
		}
	}

	w, _ = s.do(t, http.MethodGet, "/api/v1/health/db", "", nil)
	expectCode(t, w, http.StatusOK)

	w, _ = s.do(t, http.MethodGet, "/api/v1/health/mq", "", nil)
	expectCode(t, w, http.StatusServiceUnavailable)
}
