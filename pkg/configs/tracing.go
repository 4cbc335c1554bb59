package configs

import (
	"time"

	"github.com/spf13/viper"
)

// TracingConfig OpenTelemetry 链路追踪配置. 请求、上传与孤儿对象清理都会产生 span.
type TracingConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	ExporterType   string        `mapstructure:"exporter_type"   rule:"omitempty,oneof=otlp-http otlp-grpc zipkin"`
	Endpoint       string        `mapstructure:"endpoint"`
	SampleRate     float64       `mapstructure:"sample_rate"     rule:"min=0,max=1"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	MaxBatchSize   int           `mapstructure:"max_batch_size"  rule:"min=1"`
	MaxQueueSize   int           `mapstructure:"max_queue_size"  rule:"min=1"`
	// Headers 随 OTLP 请求发送，常用于托管后端的鉴权.
	Headers map[string]string `mapstructure:"headers"`
	// GRPCInsecure 仅对 otlp-grpc 生效，关闭后使用系统证书.
	GRPCInsecure   bool              `mapstructure:"grpc_insecure"`
	ResourceLabels map[string]string `mapstructure:"resource_labels"`
}

func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "dataroom")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.exporter_type", "otlp-http")
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.batch_timeout", 5*time.Second)
	v.SetDefault("tracing.max_batch_size", 512)
	v.SetDefault("tracing.max_queue_size", 2048)
	v.SetDefault("tracing.headers", map[string]string{})
	v.SetDefault("tracing.grpc_insecure", true)
	v.SetDefault("tracing.resource_labels", map[string]string{"deployment.environment": "dev"})
}
