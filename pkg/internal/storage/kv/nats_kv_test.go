package kv

import "testing"

func TestNATSKeyEncoding(t *testing.T) {
	for _, key := range []string{"dr:resp:9f3a", "dr:profile:0b1c-uuid", "plain"} {
		enc := encodeNATSKey(key)
		for _, r := range enc {
			if r == ':' {
				t.Fatalf("encoded key %q still contains ':'", enc)
			}
		}

		if got := decodeNATSKey(enc); got != key {
			t.Errorf("round trip %q -> %q -> %q", key, enc, got)
		}
	}

	if !matchPattern("dr:resp:*", decodeNATSKey("dr=resp=9f3a")) {
		t.Errorf("pattern should match decoded key")
	}
}
