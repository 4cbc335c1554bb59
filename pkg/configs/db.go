package configs

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DBType 元数据库驱动名，同一方言允许多个别名.
type DBType string

const (
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgres"
	Pg         DBType = "pg"

	MySQL   DBType = "mysql"
	MariaDB DBType = "mariadb"

	// SQLite 默认驱动，开发与测试无需外部服务.
	SQLite DBType = "sqlite"
)

// Family 返回别名归一后的方言名，未知类型返回空串.
func (t DBType) Family() string {
	switch t {
	case PostgreSQL, Postgres, Pg:
		return "postgres"
	case MySQL, MariaDB:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return ""
	}
}

// DBPoolConfig database/sql 连接池参数. 零值表示使用驱动默认值.
type DBPoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"      rule:"gte=0"`
	MaxIdle     int           `mapstructure:"max_idle"      rule:"gte=0"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"  rule:"gte=0"`
	MaxIdleTime time.Duration `mapstructure:"max_idle_time" rule:"gte=0"`
}

// DBConfig 元数据库配置. DSN 非空时直接使用，忽略 host 等连接参数.
type DBConfig struct {
	Type     DBType `mapstructure:"type"     rule:"oneof=postgresql postgres pg mysql mariadb sqlite"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     rule:"gte=0,lte=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" rule:"required"`
	SSLMode  string `mapstructure:"sslmode"  rule:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	Pool DBPoolConfig `mapstructure:"pool"`
	// SlowThreshold 超过该耗时的 SQL 以 warn 级别记录.
	SlowThreshold time.Duration `mapstructure:"slow_threshold" rule:"gte=0"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
}

// GetDSN 返回连接串.
func (c *DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Type.Family() {
	case "postgres":
		return c.postgresDSN()
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s)/%s", c.User, c.Password, c.hostPort(3306), c.Database)
	case "sqlite":
		return sqliteDSN(c.Database)
	default:
		return ""
	}
}

func (c *DBConfig) hostPort(fallback int) string {
	port := c.Port
	if port == 0 {
		port = fallback
	}

	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c *DBConfig) postgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.hostPort(5432),
		Path:   "/" + c.Database,
	}

	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}

	return u.String()
}

// sqliteDSN 数据库名为 :memory: 时使用共享内存库，否则补全 .db 后缀.
func sqliteDSN(name string) string {
	if name == ":memory:" {
		return "file::memory:?cache=shared"
	}

	if !strings.HasSuffix(name, ".db") {
		name += ".db"
	}

	return "file:" + name
}

func (c *DBConfig) setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"type":               SQLite,
		"host":               "localhost",
		"port":               0,
		"user":               "dataroom",
		"database":           "dataroom",
		"sslmode":            "disable",
		"pool.max_open":      25,
		"pool.max_idle":      5,
		"pool.max_lifetime":  time.Hour,
		"pool.max_idle_time": 10 * time.Minute,
		"slow_threshold":     200 * time.Millisecond,
		"auto_migrate":       true,
	}

	for k, val := range defaults {
		v.SetDefault("db."+k, val)
	}
}
