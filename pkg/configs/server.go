package configs

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置. 超时单位为秒.
type ServerConfig struct {
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	Host         string `mapstructure:"host"          rule:"ip"`
	ReloadConfig bool   `mapstructure:"reload_config"`
	Debug        bool   `mapstructure:"debug"`
	// Timeout 读取请求头的超时.
	Timeout int `mapstructure:"timeout"          rule:"min=1,max=300"`
	// ShutdownTimeout 收到退出信号后等待进行中请求（包括大文件上传）的时间.
	ShutdownTimeout int  `mapstructure:"shutdown_timeout" rule:"min=1,max=600"`
	Gzip            bool `mapstructure:"gzip"`
	// Swagger 非调试模式下也开放 /swagger.
	Swagger     bool     `mapstructure:"swagger"`
	CORSOrigins []string `mapstructure:"cors_origins"` // 为空时允许所有来源
	// TrustedProxies 为空时不信任 X-Forwarded-For，按 IP 限流使用连接地址.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// GetTimeoutDuration 读取请求头的超时.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetShutdownTimeout 优雅退出的等待时间.
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// Addr 返回监听地址，IPv6 地址会加方括号.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SwaggerEnabled 判断是否注册 Swagger 路由.
func (s *ServerConfig) SwaggerEnabled() bool {
	return s.Debug || s.Swagger
}

// PublicHost 返回 Swagger 文档中展示的地址，监听所有地址时使用 localhost.
func (s *ServerConfig) PublicHost() string {
	host := s.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return fmt.Sprintf("%s:%d", host, s.Port)
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.timeout", 30)
	v.SetDefault("server.shutdown_timeout", 30)
	v.SetDefault("server.gzip", true)
	v.SetDefault("server.swagger", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.trusted_proxies", []string{})
}
