package mq

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
)

func TestRedisFrameKeepsMetadata(t *testing.T) {
	msg := message.NewMessage("id-1", []byte(`{"header":{},"payload":{}}`))
	msg.Metadata.Set("request_id", "req-9")

	raw, err := encodeFrame(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got := decodeFrame(string(raw))
	if got.UUID != "id-1" || got.Metadata.Get("request_id") != "req-9" {
		t.Errorf("decoded = %s %v", got.UUID, got.Metadata)
	}

	if string(got.Payload) != string(msg.Payload) {
		t.Errorf("payload = %s", got.Payload)
	}
}

func TestRedisFrameForeignPayload(t *testing.T) {
	got := decodeFrame("plain text")
	if string(got.Payload) != "plain text" || got.UUID == "" {
		t.Errorf("foreign payload decoded as %q uuid=%q", got.Payload, got.UUID)
	}
}
