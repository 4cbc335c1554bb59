package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/dataroom/pkg/configs"
	ctxPkg "github.com/yeisme/dataroom/pkg/context"
	"github.com/yeisme/dataroom/pkg/log"
)

// Sink 消息发送端，mq.Client 满足该接口.
type Sink interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// Publisher 按事件开关发布领域事件. 发布失败只记录日志.
type Publisher struct {
	sink    Sink
	enabled map[string]bool
	logger  zerolog.Logger
}

// TopicStates 返回每个主题在配置下是否开启，总开关关闭时全部为 false.
func TopicStates(cfg configs.EventsConfig) map[string]bool {
	enabled := map[string]bool{
		TopicUserSignedUp:    cfg.User.SignedUp,
		TopicUserRoleChanged: cfg.User.RoleChanged,
		TopicFileUploaded:    cfg.File.Uploaded,
		TopicFileUpdated:     cfg.File.Updated,
		TopicFileDeleted:     cfg.File.Deleted,
		TopicFileMoved:       cfg.File.Moved,
		TopicFolderCreated:   cfg.Folder.Created,
		TopicFolderRenamed:   cfg.Folder.Renamed,
		TopicFolderMoved:     cfg.Folder.Moved,
		TopicFolderDeleted:   cfg.Folder.Deleted,
	}

	if !cfg.Enabled {
		for topic := range enabled {
			enabled[topic] = false
		}
	}

	return enabled
}

// NewPublisher 创建事件发布器，sink 为 nil 时所有事件都被丢弃.
func NewPublisher(sink Sink, cfg configs.EventsConfig) *Publisher {
	return &Publisher{sink: sink, enabled: TopicStates(cfg), logger: log.Named("events")}
}

// Enabled 判断主题是否会被发布.
func (p *Publisher) Enabled(topic string) bool {
	return p != nil && p.sink != nil && p.enabled[topic]
}

// Emit 构造并发布事件. 主题未开启时直接返回.
func Emit[T any](ctx context.Context, p *Publisher, topic string, payload T) {
	if !p.Enabled(topic) {
		return
	}

	opts := []func(*EventHeader){WithProducer(Producer), WithRequestID(ctxPkg.GetRequestID(ctx))}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, WithTraceID(sc.TraceID().String()))
	}

	if id, ok := ctxPkg.GetIdentity(ctx); ok {
		opts = append(opts, WithActor(id.UserID))
	}

	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("encode event failed")
		return
	}

	if err := p.sink.Publish(ctx, topic, msg); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
		return
	}

	p.logger.Debug().Str("topic", topic).Str("id", msg.UUID).Msg("event published")
}
