package rule_test

import (
	"strings"
	"testing"

	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/rule"
)

func ptr[T any](v T) *T { return &v }

// TestSignupRules 测试注册请求的字段规则与错误文本.
func TestSignupRules(t *testing.T) {
	valid := types.SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "password1"}

	tests := []struct {
		name   string
		mutate func(r *types.SignupRequest)
		want   string
	}{
		{"valid", func(*types.SignupRequest) {}, ""},
		{"age omitted", func(r *types.SignupRequest) { r.Age = 0 }, ""},
		{"short name", func(r *types.SignupRequest) { r.Name = "A" }, "name must be at least 2 characters"},
		{"blank name", func(r *types.SignupRequest) { r.Name = "   " }, "name is required"},
		{"long name", func(r *types.SignupRequest) { r.Name = strings.Repeat("n", 51) }, "name must be at most 50 characters"},
		{"bad email", func(r *types.SignupRequest) { r.Email = "alice" }, "email must be a valid email address"},
		{"short password", func(r *types.SignupRequest) { r.Password = "123" }, "password must be at least 8 characters"},
		{"too young", func(r *types.SignupRequest) { r.Age = 12 }, "age must be at least 13"},
		{"too old", func(r *types.SignupRequest) { r.Age = 121 }, "age must be at most 120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			if got := rule.First(rule.ValidateStruct(req)); got != tt.want {
				t.Errorf("First() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestProfileRules 测试资料更新中 nil 字段不参与校验.
func TestProfileRules(t *testing.T) {
	tests := []struct {
		name string
		req  types.UpdateProfileRequest
		want string
	}{
		{"nothing set", types.UpdateProfileRequest{}, ""},
		{"name only", types.UpdateProfileRequest{Name: ptr("Bob")}, ""},
		{"age only", types.UpdateProfileRequest{Age: ptr(30)}, ""},
		{"short name", types.UpdateProfileRequest{Name: ptr("B")}, "name must be at least 2 characters"},
		{"young", types.UpdateProfileRequest{Age: ptr(5)}, "age must be at least 13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.First(rule.ValidateStruct(tt.req)); got != tt.want {
				t.Errorf("First() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorsUsesJSONNames 测试错误字典以 json 标签为键并包含全部失败字段.
func TestErrorsUsesJSONNames(t *testing.T) {
	err := rule.ValidateStruct(types.SignupRequest{Name: "A", Email: "bad", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	errs := rule.Errors(err)
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %v", errs)
	}

	for _, field := range []string{"name", "email", "password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %q in %v", field, errs)
		}
	}

	if rule.Errors(nil) != nil {
		t.Error("nil error should map to nil")
	}
}
