package configs

import "maps"

const redactedValue = "******"

func redact(s *string) {
	if *s != "" {
		*s = redactedValue
	}
}

// Redacted 返回隐藏密钥、密码与 DSN 后的配置副本，用于打印或日志.
func (c AppConfig) Redacted() AppConfig {
	out := c

	for _, s := range []*string{
		&out.Auth.JWTSecret,
		&out.DB.Password,
		&out.DB.DSN,
		&out.S3.SecretAccessKey,
		&out.KV.Redis.Password,
		&out.KV.NATS.Password,
		&out.MQ.Common.Password,
		&out.MQ.NATS.JWT,
		&out.MQ.NATS.NKey,
		&out.MQ.Redis.Password,
	} {
		redact(s)
	}

	// Headers 常携带后端令牌，同时避免修改原配置的 map.
	if len(c.Tracing.Headers) > 0 {
		out.Tracing.Headers = maps.Clone(c.Tracing.Headers)
		for k := range out.Tracing.Headers {
			out.Tracing.Headers[k] = redactedValue
		}
	}

	return out
}
