//go:build !no_sqlite && cgo

package db

import (
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/configs"
)

// sqliteDSN 为 mattn 驱动开启外键约束与写锁等待，保证文件夹级联与 SET NULL 生效.
func sqliteDSN(dsn string) string {
	return appendDSNParams(dsn,
		[2]string{"foreign_keys", "_foreign_keys=1"},
		[2]string{"busy_timeout", "_busy_timeout=" + strconv.Itoa(sqliteBusyTimeoutMillis)},
	)
}

func createSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(sqliteDSN(dsn))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
