package configs

import (
	"github.com/spf13/viper"
)

// KVConfig 键值存储配置. 用户资料缓存、公共用户读接口的响应缓存与限流共享同一存储.
type KVConfig struct {
	Type       string             `mapstructure:"type"       rule:"oneof=memory redis nats groupcache"`
	Redis      RedisKVConfig      `mapstructure:"redis"`
	NATS       NATSKVConfig       `mapstructure:"nats"`
	Groupcache GroupcacheKVConfig `mapstructure:"groupcache"`
}

type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// NATSKVConfig JetStream KV bucket，不存在时自动创建.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"`
}

// GroupcacheKVConfig 多实例部署时 Peers 列出所有实例的 HTTP 地址，Self 为本实例地址.
type GroupcacheKVConfig struct {
	Name       string   `mapstructure:"name"`
	CacheBytes int64    `mapstructure:"cache_bytes" rule:"min=0"`
	Peers      []string `mapstructure:"peers"`
	Self       string   `mapstructure:"self"`
}

func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", "memory")

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.db", 0)

	v.SetDefault("kv.nats.url", "localhost:4222")
	v.SetDefault("kv.nats.bucket", "dataroom_kv")

	v.SetDefault("kv.groupcache.name", "dataroom")
	v.SetDefault("kv.groupcache.cache_bytes", 64<<20)
	v.SetDefault("kv.groupcache.peers", []string{})
	v.SetDefault("kv.groupcache.self", "http://localhost:8080")
}
