package queue

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/dataroom/pkg/log"
)

// Source 消息订阅端，mq.Client 满足该接口.
type Source interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Auditor 订阅所有领域事件并写入审计日志.
type Auditor struct {
	source Source
	logger zerolog.Logger
	// OnEvent 可选回调，每条成功解析的事件调用一次.
	OnEvent func(Message[map[string]any])
}

// NewAuditor 创建审计消费者.
func NewAuditor(source Source) *Auditor {
	return &Auditor{source: source, logger: log.Named("audit")}
}

// Start 为每个主题启动消费协程，ctx 取消后退出.
func (a *Auditor) Start(ctx context.Context) error {
	for _, topic := range AllTopics() {
		ch, err := a.source.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go a.consume(ctx, topic, ch)
	}

	return nil
}

func (a *Auditor) consume(ctx context.Context, topic string, ch <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			env, err := ParseWatermillMessage[map[string]any](msg)
			if err != nil {
				a.logger.Warn().Err(err).Str("topic", topic).Str("id", msg.UUID).Msg("drop malformed event")
				msg.Ack()

				continue
			}

			a.logger.Info().
				Str("topic", env.Header.Topic).
				Str("trace_id", env.Header.TraceID).
				Str("request_id", env.Header.RequestID).
				Str("actor_id", env.Header.ActorID).
				Time("occurred_at", env.Header.OccurredAt).
				Interface("payload", env.Payload).
				Msg("event")

			if a.OnEvent != nil {
				a.OnEvent(env)
			}

			msg.Ack()
		}
	}
}
