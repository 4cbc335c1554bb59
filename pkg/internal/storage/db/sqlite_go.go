//go:build !no_sqlite && !cgo

package db

import (
	"strconv"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/configs"
)

// sqliteDSN 纯 Go 驱动通过 _pragma 参数开启外键与写锁等待.
func sqliteDSN(dsn string) string {
	return appendDSNParams(dsn,
		[2]string{"foreign_keys", "_pragma=foreign_keys(1)"},
		[2]string{"busy_timeout", "_pragma=busy_timeout(" + strconv.Itoa(sqliteBusyTimeoutMillis) + ")"},
	)
}

func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(sqliteDSN(dsn))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
