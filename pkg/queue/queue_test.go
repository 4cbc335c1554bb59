package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/storage/mq"
	"github.com/yeisme/dataroom/pkg/queue"
)

type recordingSink struct {
	mu     sync.Mutex
	topics []string
	msgs   []*message.Message
	err    error
}

func (s *recordingSink) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics = append(s.topics, topic)
	s.msgs = append(s.msgs, msgs...)

	return s.err
}

func allEvents() configs.EventsConfig {
	return configs.EventsConfig{
		Enabled: true,
		User:    configs.UserEventsConfig{SignedUp: true, RoleChanged: true},
		File:    configs.FileEventsConfig{Uploaded: true, Updated: true, Deleted: true, Moved: true},
		Folder:  configs.FolderEventsConfig{Created: true, Renamed: true, Moved: true, Deleted: true},
	}
}

// TestEnvelopeRoundTrip 测试信封编码后头部与负载完整.
func TestEnvelopeRoundTrip(t *testing.T) {
	folder := "f1"
	payload := queue.FileMovedPayload{
		File:       queue.FileRef{ID: "a", UserID: "u", OriginalName: "a.pdf", BlobPathname: "u/1-x.pdf"},
		ToFolderID: &folder,
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFileMoved, payload, queue.WithProducer(queue.Producer), queue.WithTraceID("t-1"))
	if err != nil {
		t.Fatalf("new message: %v", err)
	}

	if msg.Metadata.Get("topic") != queue.TopicFileMoved || msg.Metadata.Get("trace_id") != "t-1" {
		t.Errorf("unexpected metadata: %v", msg.Metadata)
	}

	env, err := queue.ParseWatermillMessage[queue.FileMovedPayload](msg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if env.Header.Producer != "dataroom" || env.Header.Version != queue.PayloadVersionV1 {
		t.Errorf("unexpected header: %+v", env.Header)
	}

	if env.Payload.FromFolderID != nil || env.Payload.ToFolderID == nil || *env.Payload.ToFolderID != "f1" {
		t.Errorf("unexpected payload: %+v", env.Payload)
	}
}

// TestPublisherHonorsSwitches 测试事件开关.
func TestPublisherHonorsSwitches(t *testing.T) {
	sink := &recordingSink{}
	cfg := allEvents()
	cfg.File.Updated = false

	pub := queue.NewPublisher(sink, cfg)
	ctx := context.Background()

	queue.Emit(ctx, pub, queue.TopicFileUpdated, queue.FileUpdatedPayload{})
	queue.Emit(ctx, pub, queue.TopicFileDeleted, queue.FileDeletedPayload{})

	if len(sink.topics) != 1 || sink.topics[0] != queue.TopicFileDeleted {
		t.Fatalf("unexpected published topics: %v", sink.topics)
	}

	cfg.Enabled = false
	off := queue.NewPublisher(sink, cfg)
	queue.Emit(ctx, off, queue.TopicFileDeleted, queue.FileDeletedPayload{})

	if len(sink.topics) != 1 {
		t.Fatalf("global switch ignored: %v", sink.topics)
	}
}

// TestPublisherSwallowsErrors 测试发布失败不会向调用方传播.
func TestPublisherSwallowsErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	pub := queue.NewPublisher(sink, allEvents())

	queue.Emit(context.Background(), pub, queue.TopicUserSignedUp, queue.UserSignedUpPayload{UserID: "u"})

	if len(sink.topics) != 1 {
		t.Fatalf("expected one publish attempt, got %d", len(sink.topics))
	}

	var nilPub *queue.Publisher
	queue.Emit(context.Background(), nilPub, queue.TopicUserSignedUp, queue.UserSignedUpPayload{})
}

// TestEmitCarriesRequestContext 测试事件头带上请求 ID 与操作者.
func TestEmitCarriesRequestContext(t *testing.T) {
	sink := &recordingSink{}
	pub := queue.NewPublisher(sink, allEvents())

	ctx := ctxPkg.WithRequestID(context.Background(), "req-42")
	ctx = ctxPkg.WithIdentity(ctx, ctxPkg.Identity{UserID: "admin-1", Role: model.RoleAdmin})

	queue.Emit(ctx, pub, queue.TopicUserRoleChanged, queue.UserRoleChangedPayload{UserID: "u2"})

	if len(sink.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(sink.msgs))
	}

	msg := sink.msgs[0]
	if msg.Metadata.Get("request_id") != "req-42" || msg.Metadata.Get("actor_id") != "admin-1" {
		t.Errorf("metadata = %v", msg.Metadata)
	}

	env, err := queue.ParseWatermillMessage[map[string]any](msg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if env.Header.RequestID != "req-42" || env.Header.ActorID != "admin-1" {
		t.Errorf("header = %+v", env.Header)
	}
}

// TestAuditorConsumes 测试审计消费者通过进程内 MQ 收到事件.
func TestAuditorConsumes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mq.New(ctx, &configs.MQConfig{Type: configs.MQTypeGoChannel})
	if err != nil {
		t.Fatalf("mq: %v", err)
	}
	defer client.Close()

	got := make(chan queue.Message[map[string]any], 1)
	auditor := queue.NewAuditor(client)
	auditor.OnEvent = func(m queue.Message[map[string]any]) { got <- m }

	if err := auditor.Start(ctx); err != nil {
		t.Fatalf("start auditor: %v", err)
	}

	pub := queue.NewPublisher(client, allEvents())
	queue.Emit(ctx, pub, queue.TopicFolderCreated, queue.FolderCreatedPayload{
		Folder: queue.FolderRef{ID: "d1", UserID: "u1", Name: "Docs"},
	})

	select {
	case env := <-got:
		if env.Header.Topic != queue.TopicFolderCreated {
			t.Errorf("unexpected topic %s", env.Header.Topic)
		}

		folder, _ := env.Payload["folder"].(map[string]any)
		if folder["name"] != "Docs" {
			t.Errorf("unexpected payload %v", env.Payload)
		}
	case <-ctx.Done():
		t.Fatal("auditor did not receive event")
	}
}
