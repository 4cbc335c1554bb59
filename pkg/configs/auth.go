package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultJWTSecret 仅用于本地开发，生产环境必须覆盖.
	DefaultJWTSecret  = "default-secret"
	DefaultJWTIssuer  = "dataroom"
	DefaultTokenTTL   = 24 * time.Hour
	DefaultBcryptCost = 12
)

// AuthConfig JWT 签发与密码哈希配置.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"  rule:"required"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"   rule:"min=1m"`
	BcryptCost int           `mapstructure:"bcrypt_cost" rule:"min=4,max=31"`
}

// UsesDefaultSecret 判断是否仍在使用开发用密钥.
func (c *AuthConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.issuer", DefaultJWTIssuer)
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
}
