//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/configs"
)

// createMySQLDialector 时间字段需要 parseTime，文件名需要 utf8mb4.
func createMySQLDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN: appendDSNParams(dsn,
			[2]string{"parseTime", "parseTime=true"},
			[2]string{"charset", "charset=utf8mb4"},
			[2]string{"loc", "loc=UTC"},
		),
		DefaultStringSize: 255,
	})
}

// MySQL 与 MariaDB 共用驱动.
func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
