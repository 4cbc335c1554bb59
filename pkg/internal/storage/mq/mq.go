// Package mq 提供基于 Watermill 库的统一消息队列操作接口.
// 支持发布/订阅模式，并通过工厂模式抽象不同的 MQ 实现.
//
// 支持的 MQ 类型：
//   - gochannel（进程内，默认）
//   - NATS（支持 JetStream）
//   - Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, &configs.GetConfig().MQ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello world"))
//	err = client.Publish(ctx, "topic", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/dataroom/pkg/configs"
	nlog "github.com/yeisme/dataroom/pkg/log"
)

// ErrNotInitialized MQ 客户端未初始化.
var ErrNotInitialized = errors.New("mq not initialized")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factories = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型列表.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	mqType     configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType {
	return c.mqType
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return ErrNotInitialized
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, ErrNotInitialized
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// HealthCheck 检查发布与订阅端是否就绪.
func (c *Client) HealthCheck(context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return ErrNotInitialized
	}

	return nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	// gochannel 的 Publisher 与 Subscriber 为同一实例，只关闭一次
	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

// NewLogger 返回基于全局 zerolog 的 watermill 日志适配器.
func NewLogger() watermill.LoggerAdapter {
	l := nlog.Logger().With().Str("component", "mq").Logger()

	return &zerologAdapter{l: &l}
}

// New 根据配置初始化消息队列.
func New(ctx context.Context, cfg *configs.MQConfig) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLogger()

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if cfg.Common.EnableMetrics && configs.GetConfig().Metrics.Enabled {
		metricsBuilder := metrics.NewPrometheusMetricsBuilder(prometheus.DefaultRegisterer, "dataroom", "mq")

		if pub, err = metricsBuilder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = metricsBuilder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 已初始化")

	return &Client{mqType: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// NewWithPubSub 使用现有的 Publisher/Subscriber 构造客户端，测试中使用.
func NewWithPubSub(t configs.MQType, pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{mqType: t, publisher: pub, subscriber: sub}
}
