package db

import "strings"

// sqliteBusyTimeoutMillis 并发上传时写锁等待时间.
const sqliteBusyTimeoutMillis = 5000

// appendDSNParams 在 DSN 上追加查询参数，已包含 key 的参数跳过.
func appendDSNParams(dsn string, params ...[2]string) string {
	var b strings.Builder
	b.WriteString(dsn)

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	for _, p := range params {
		if strings.Contains(dsn, p[0]) {
			continue
		}

		b.WriteString(sep)
		b.WriteString(p[1])
		sep = "&"
	}

	return b.String()
}
