package types

import "testing"

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 Bytes"},
		{-1, "0 Bytes"},
		{500, "500 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{10 * 1024 * 1024, "10 MB"},
		{1234567, "1.18 MB"},
		{1 << 30, "1 GB"},
		{1 << 40, "1024 GB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
