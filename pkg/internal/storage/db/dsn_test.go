package db

import "testing"

func TestAppendDSNParams(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"no query", "data.db", "data.db?a=1&b=2"},
		{"existing query", "file:x?mode=memory", "file:x?mode=memory&a=1&b=2"},
		{"keeps user value", "data.db?a=0", "data.db?a=0&b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendDSNParams(tt.dsn, [2]string{"a=", "a=1"}, [2]string{"b=", "b=2"})
			if got != tt.want {
				t.Errorf("appendDSNParams(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
