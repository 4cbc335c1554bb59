// Package queue 管理领域事件的发布与订阅.
//
// 概览
//   - 采用发布/订阅模型，解耦请求处理与审计、统计等下游流程
//   - 统一的消息封装：Message[Payload] = Header + Payload
//   - 主题常量见 topics.go，负载结构体见 payloads.go
//   - JSON 编解码使用 bytedance/sonic
//
// 消息信封 JSON 结构
//
//	{
//	  "header": {
//	    "topic": "dr.file.uploaded",
//	    "trace_id": "optional-trace-id",
//	    "request_id": "optional-request-id",
//	    "actor_id": "optional-user-id",
//	    "producer": "dataroom",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布示例
//
//	pub := queue.NewPublisher(mqClient, cfg.Events)
//	queue.Emit(ctx, pub, queue.TopicFileUploaded, queue.FileUploadedPayload{...})
//
// 订阅示例
//
//	ch, _ := mqClient.Subscribe(ctx, queue.TopicFileUploaded)
//	for m := range ch {
//	    env, _ := queue.ParseWatermillMessage[queue.FileUploadedPayload](m)
//	    m.Ack()
//	}
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"
	// Producer 本服务的生产者标识.
	Producer = "dataroom"
)

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithRequestID 设置 RequestID.
func WithRequestID(id string) func(*EventHeader) { return func(h *EventHeader) { h.RequestID = id } }

// WithActor 设置 ActorID.
func WithActor(userID string) func(*EventHeader) { return func(h *EventHeader) { h.ActorID = userID } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 构造一个 watermill 消息，设置 ID 与元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)
	env := Message[T]{Header: header, Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	// 元数据镜像头部字段，消费者无需解码负载即可路由或过滤.
	for k, v := range map[string]string{
		"topic":       topic,
		"trace_id":    header.TraceID,
		"request_id":  header.RequestID,
		"actor_id":    header.ActorID,
		"producer":    header.Producer,
		"version":     header.Version,
		"occurred_at": header.OccurredAt.Format(time.RFC3339Nano),
	} {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
