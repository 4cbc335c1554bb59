package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/storage/mq"
)

// TestGoChannelRoundTrip 测试进程内 MQ 的发布与订阅.
func TestGoChannelRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mq.New(ctx, &configs.MQConfig{Type: configs.MQTypeGoChannel})
	if err != nil {
		t.Fatalf("new gochannel mq: %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}

	ch, err := client.Subscribe(ctx, "dr.test")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := client.Publish(ctx, "dr.test", message.NewMessage(watermill.NewUUID(), []byte("ping"))); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-ch:
		if string(msg.Payload) != "ping" {
			t.Errorf("unexpected payload %q", msg.Payload)
		}

		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

// TestNilClient 测试未初始化的客户端返回错误.
func TestNilClient(t *testing.T) {
	var client *mq.Client

	if err := client.Publish(context.Background(), "x"); err == nil {
		t.Error("expected error publishing on nil client")
	}

	if err := client.Close(); err != nil {
		t.Errorf("close nil client: %v", err)
	}
}

// TestUnsupportedType 测试未知 MQ 类型.
func TestUnsupportedType(t *testing.T) {
	if _, err := mq.New(context.Background(), &configs.MQConfig{Type: "kafka"}); err == nil {
		t.Error("expected error for unsupported mq type")
	}
}
