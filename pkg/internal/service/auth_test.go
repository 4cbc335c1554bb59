package service_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/service"
	"github.com/yeisme/dataroom/pkg/internal/testenv"
	"github.com/yeisme/dataroom/pkg/internal/types"
)

// expectStatus 断言 err 为指定状态码的业务错误.
func expectStatus(t *testing.T, err error, status int) *service.Error {
	t.Helper()

	se := service.AsError(err)
	if se == nil {
		t.Fatalf("expected *service.Error with status %d, got %v", status, err)
	}

	if se.Status != status {
		t.Fatalf("status = %d (%s), want %d", se.Status, se.Message, status)
	}

	return se
}

func signup(t *testing.T, env *testenv.Env, name, email string) *model.User {
	t.Helper()

	user, _, err := service.NewAuthService(env.Ctx).Signup(env.Ctx, &types.SignupRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
		Age:      30,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}

	return user
}

// TestSignup 测试注册成功、令牌可校验与默认角色.
func TestSignup(t *testing.T) {
	env := testenv.New(t)
	svc := service.NewAuthService(env.Ctx)

	user, token, err := svc.Signup(env.Ctx, &types.SignupRequest{
		Name:     "  Alice ",
		Email:    " Alice@Example.com ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if user.Name != "Alice" || user.Email != "alice@example.com" || user.Role != model.RoleUser {
		t.Errorf("unexpected user %+v", user)
	}

	if user.Password == "password123" || user.Password == "" {
		t.Errorf("password not hashed")
	}

	claims, err := svc.Issuer().Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != user.ID || claims.Role != model.RoleUser {
		t.Errorf("unexpected claims %+v", claims)
	}
}

// TestSignupDuplicateEmail 测试重复邮箱返回 409.
func TestSignupDuplicateEmail(t *testing.T) {
	env := testenv.New(t)
	signup(t, env, "Alice", "alice@example.com")

	_, _, err := service.NewAuthService(env.Ctx).Signup(env.Ctx, &types.SignupRequest{
		Name:     "Alice Again",
		Email:    "ALICE@example.com",
		Password: "password123",
	})

	se := expectStatus(t, err, http.StatusConflict)
	if se.Message != "User with this email already exists" {
		t.Errorf("message = %q", se.Message)
	}
}

// TestSignupValidation 测试必填字段与字段规则.
func TestSignupValidation(t *testing.T) {
	env := testenv.New(t)
	svc := service.NewAuthService(env.Ctx)

	cases := []struct {
		name string
		req  types.SignupRequest
		msg  string
	}{
		{"missing", types.SignupRequest{Name: "Bob", Email: "bob@example.com"}, "Name, email, and password are required"},
		{"short name", types.SignupRequest{Name: "B", Email: "bob@example.com", Password: "password123"}, "name must be at least 2 characters"},
		{"bad email", types.SignupRequest{Name: "Bob", Email: "bob", Password: "password123"}, "email must be a valid email address"},
		{"short password", types.SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "short"}, "password must be at least 8 characters"},
		{"young", types.SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "password123", Age: 5}, "age must be at least 13"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req

			_, _, err := svc.Signup(env.Ctx, &req)

			se := expectStatus(t, err, http.StatusBadRequest)
			if se.Message != tc.msg {
				t.Errorf("message = %q, want %q", se.Message, tc.msg)
			}
		})
	}
}

// TestLogin 测试登录成功与失败.
func TestLogin(t *testing.T) {
	env := testenv.New(t)
	user := signup(t, env, "Alice", "alice@example.com")
	svc := service.NewAuthService(env.Ctx)

	got, token, err := svc.Login(env.Ctx, &types.LoginRequest{Email: "Alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if got.ID != user.ID || token == "" {
		t.Errorf("unexpected login result %+v %q", got, token)
	}

	_, _, err = svc.Login(env.Ctx, &types.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	if se := expectStatus(t, err, http.StatusUnauthorized); se.Message != "Invalid credentials" {
		t.Errorf("message = %q", se.Message)
	}

	_, _, err = svc.Login(env.Ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	expectStatus(t, err, http.StatusUnauthorized)

	_, _, err = svc.Login(env.Ctx, &types.LoginRequest{Email: "alice@example.com"})
	if se := expectStatus(t, err, http.StatusBadRequest); se.Message != "Email and password are required" {
		t.Errorf("message = %q", se.Message)
	}
}

// TestNotConfigured 测试缺少存储时返回 ErrNotConfigured.
func TestNotConfigured(t *testing.T) {
	testenv.New(t)

	svc := service.NewAuthService(t.Context())

	_, _, err := svc.Login(t.Context(), &types.LoginRequest{Email: "a@example.com", Password: "password123"})
	if !errors.Is(err, service.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
