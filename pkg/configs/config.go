// Package configs 管理应用程序配置，包括数据库、对象存储、KV、消息队列、认证与上传的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	dsn := configs.GetConfig().DB.GetDSN()
//	fmt.Println("DSN:", dsn)
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/dataroom/pkg/rule"
)

// AppVersion 应用版本，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀，例如 DATAROOM_AUTH_JWT_SECRET.
const EnvPrefix = "DATAROOM"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // 监听地址、调试模式等
		Log            LogConfig            `mapstructure:"log"`             // 日志相关配置
		DB             DBConfig             `mapstructure:"db"`              // 数据库配置
		S3             S3Config             `mapstructure:"s3"`              // 对象存储配置
		KV             KVConfig             `mapstructure:"kv"`              // 键值存储配置
		MQ             MQConfig             `mapstructure:"mq"`              // 消息队列配置
		Auth           AuthConfig           `mapstructure:"auth"`            // JWT 与密码哈希配置
		Upload         UploadConfig         `mapstructure:"upload"`          // 上传限制
		Cache          CacheConfig          `mapstructure:"cache"`           // 缓存配置
		Events         EventsConfig         `mapstructure:"events"`          // 事件发布开关
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // Prometheus 指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // OpenTelemetry 追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // 速率限制
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 熔断器
		Scheduler      SchedulerConfig      `mapstructure:"scheduler"`       // 定时任务
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 找不到配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	hasFile := false

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		appViper.SetConfigFile(path)

		hasFile = true
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

	search:
		for _, dir := range []string{path, filepath.Join(path, "configs")} {
			for _, ext := range exts {
				cfg := filepath.Join(dir, "config."+ext)
				if _, err := os.Stat(cfg); err == nil {
					appViper.SetConfigFile(cfg)

					hasFile = true

					break search
				}
			}
		}
	}

	appViper.SetEnvPrefix(EnvPrefix)
	appViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	appViper.AutomaticEnv()

	if hasFile {
		if err := appViper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := globalConfig.Validate(); err != nil {
		return err
	}

	if hasFile {
		reloadConfigs(appViper, globalConfig.Server.ReloadConfig)
	}

	return nil
}

// Validate 依据 rule 标签校验配置.
func (c *AppConfig) Validate() error {
	for name, section := range map[string]any{
		"server":  &c.Server,
		"log":     &c.Log,
		"db":      &c.DB,
		"auth":    &c.Auth,
		"upload":  &c.Upload,
		"kv":      &c.KV,
		"s3":      &c.S3,
		"metrics": &c.Metrics,
		"mq":      &c.MQ,
		"tracing": &c.Tracing,

		"circuit_breaker": &c.CircuitBreaker,
		"rate_limit":      &c.RateLimit,
	} {
		if err := rule.ValidateStruct(section); err != nil {
			return fmt.Errorf("invalid %s config: %w", name, err)
		}
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.S3.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.Upload.setDefaults(v)
	cfg.Cache.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.RateLimit.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
	cfg.Scheduler.setDefaults(v)
}

// Defaults 返回仅包含默认值的配置，常用于测试.
func Defaults() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return cfg
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)

			return
		}

		if err := next.Validate(); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)

			return
		}

		globalConfig = next
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// SetConfig 替换全局配置，测试中使用.
func SetConfig(cfg AppConfig) {
	globalConfig = cfg
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	return appViper
}
