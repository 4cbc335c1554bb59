package configs

import "testing"

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.JWTSecret = "s3cret"
	cfg.DB.DSN = "postgres://u:p@db/dataroom"
	cfg.S3.SecretAccessKey = "minio-secret"
	cfg.Tracing.Headers = map[string]string{"authorization": "Bearer abc"}

	out := cfg.Redacted()

	for name, got := range map[string]string{
		"jwt":     out.Auth.JWTSecret,
		"dsn":     out.DB.DSN,
		"s3":      out.S3.SecretAccessKey,
		"headers": out.Tracing.Headers["authorization"],
	} {
		if got != redactedValue {
			t.Errorf("%s = %q, want redacted", name, got)
		}
	}

	if out.DB.Password != "" {
		t.Errorf("empty password should stay empty, got %q", out.DB.Password)
	}

	if cfg.Auth.JWTSecret != "s3cret" || cfg.Tracing.Headers["authorization"] != "Bearer abc" {
		t.Errorf("original config was modified")
	}
}
