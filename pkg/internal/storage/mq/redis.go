package mq

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/dataroom/pkg/configs"
)

// DefaultChannelBufferSize 每个订阅的本地缓冲.
const DefaultChannelBufferSize = 100

// redisFrame Redis Pub/Sub 只传字符串，消息 ID 与元数据随负载一起编码.
type redisFrame struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

func encodeFrame(msg *message.Message) ([]byte, error) {
	return sonic.Marshal(redisFrame{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
}

// decodeFrame 解出消息. 非本服务格式的数据整体作为负载.
func decodeFrame(raw string) *message.Message {
	var f redisFrame
	if err := sonic.UnmarshalString(raw, &f); err != nil || f.UUID == "" {
		return message.NewMessage(watermill.NewUUID(), []byte(raw))
	}

	msg := message.NewMessage(f.UUID, f.Payload)
	for k, v := range f.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg
}

// RedisPublisher 通过 PUBLISH 投递，订阅者离线期间的事件会丢失.
type RedisPublisher struct {
	client *redis.Client
}

// RedisSubscriber 每次 Subscribe 创建独立的 PubSub 连接.
type RedisSubscriber struct {
	client  *redis.Client
	logger  watermill.LoggerAdapter
	subs    []*redis.PubSub
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ClientName: cfg.Common.ClientID,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	return &RedisPublisher{client: rdb}, &RedisSubscriber{
		client:  rdb,
		logger:  logger,
		closeCh: make(chan struct{}),
	}, nil
}

func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		frame, err := encodeFrame(msg)
		if err != nil {
			return err
		}

		if err := p.client.Publish(msg.Context(), topic, frame).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Close 连接由 Subscriber 关闭.
func (p *RedisPublisher) Close() error {
	return nil
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrNotInitialized
	}

	ps := s.client.Subscribe(ctx, topic)
	s.subs = append(s.subs, ps)

	out := make(chan *message.Message, DefaultChannelBufferSize)

	go s.pump(ctx, topic, ps, out)

	return out, nil
}

func (s *RedisSubscriber) pump(ctx context.Context, topic string, ps *redis.PubSub, out chan<- *message.Message) {
	defer close(out)

	for {
		raw, err := ps.ReceiveMessage(ctx)
		if err != nil {
			select {
			case <-s.closeCh:
			case <-ctx.Done():
			default:
				s.logger.Error("redis receive failed", err, watermill.LogFields{"topic": topic})
			}

			return
		}

		select {
		case out <- decodeFrame(raw.Payload):
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, ps := range s.subs {
		if err := ps.Close(); err != nil {
			s.logger.Error("close redis pubsub", err, nil)
		}
	}

	return s.client.Close()
}
