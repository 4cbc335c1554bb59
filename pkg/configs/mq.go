package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS      MQType = "nats"
	MQTypeRedis     MQType = "redis"
	MQTypeGoChannel MQType = "gochannel" // 进程内 pub/sub，单实例部署与测试使用
)

// MQConfig 领域事件（注册、上传、删除等）的投递通道配置.
type MQConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Type    MQType         `mapstructure:"type"    rule:"oneof=nats redis gochannel"`
	Common  MQCommonConfig `mapstructure:"common"`
	NATS    MQNATSConfig   `mapstructure:"nats"`
	Redis   MQRedisConfig  `mapstructure:"redis"`
}

// MQCommonConfig 连接参数.
type MQCommonConfig struct {
	URL           string        `mapstructure:"url"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	ClientID      string        `mapstructure:"client_id"`
	MaxReconnects int           `mapstructure:"max_reconnects" rule:"min=-1,max=100"` // -1 表示无限重连
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" rule:"gte=0"`
	// StrictConnect 为 true 时启动阶段连接失败直接报错，否则后台重试.
	StrictConnect bool          `mapstructure:"strict_connect"`
	MaxPingsOut   int           `mapstructure:"max_pings_out"  rule:"min=1,max=10"`
	PingInterval  time.Duration `mapstructure:"ping_interval"  rule:"gte=0"`
	BufferSize    int           `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
}

// MQJetStreamConfig JetStream 投递参数，关闭时退化为 core NATS（至多一次）.
type MQJetStreamConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AutoProvision bool   `mapstructure:"auto_provision"`
	TrackMsgID    bool   `mapstructure:"track_msg_id"`
	AckAsync      bool   `mapstructure:"ack_async"`
	DurablePrefix string `mapstructure:"durable_prefix"`
}

// MQNATSConfig NATS 参数.
type MQNATSConfig struct {
	JetStream MQJetStreamConfig `mapstructure:"jetstream"`
	JWT       string            `mapstructure:"jwt"`
	NKey      string            `mapstructure:"nkey"`
	// ClusterURLs 非空时覆盖 Common.URL.
	ClusterURLs []string `mapstructure:"cluster_urls"`
	// QueueGroup 非空时多个实例共享订阅，每条审计事件只被一个实例消费.
	QueueGroup string `mapstructure:"queue_group"`
}

// MQRedisConfig Redis Pub/Sub 参数.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

func (c *MQConfig) setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"enabled": true,
		"type":    MQTypeGoChannel,

		"common.url":            "localhost:4222",
		"common.client_id":      "dataroom-api",
		"common.max_reconnects": 5,
		"common.reconnect_wait": 5 * time.Second,
		"common.strict_connect": false,
		"common.max_pings_out":  3,
		"common.ping_interval":  20 * time.Second,
		"common.buffer_size":    32 * 1024,
		"common.enable_metrics": true,

		"nats.jetstream.enabled":        true,
		"nats.jetstream.auto_provision": true,
		"nats.jetstream.track_msg_id":   true,
		"nats.jetstream.ack_async":      true,
		"nats.jetstream.durable_prefix": "dataroom",
		"nats.queue_group":              "dataroom-audit",

		"redis.addr": "localhost:6379",
		"redis.db":   0,
	}

	for k, val := range defaults {
		v.SetDefault("mq."+k, val)
	}
}
