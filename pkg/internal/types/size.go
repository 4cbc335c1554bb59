package types

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize 以 1024 为进制格式化字节数，保留至多两位小数，例如 1536 -> "1.5 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(size) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}
