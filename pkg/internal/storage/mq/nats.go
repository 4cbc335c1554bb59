package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/yeisme/dataroom/pkg/configs"
)

const (
	natsDrainTimeout   = 30 * time.Second
	natsFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// natsServers 返回逗号分隔的服务器列表，缺省协议时补 nats://.
func natsServers(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	if strings.Contains(cfg.Common.URL, "://") {
		return cfg.Common.URL
	}

	return "nats://" + cfg.Common.URL
}

// natsOptions 连接参数与认证. 断线、重连与关闭事件写入 watermill 日志.
func natsOptions(cfg *configs.MQConfig, logger watermill.LoggerAdapter) []nats.Option {
	c := cfg.Common

	opts := []nats.Option{
		nats.Name(c.ClientID),
		nats.MaxReconnects(c.MaxReconnects),
		nats.ReconnectWait(c.ReconnectWait),
		nats.PingInterval(c.PingInterval),
		nats.MaxPingsOutstanding(c.MaxPingsOut),
		nats.ReconnectBufSize(c.BufferSize),
		nats.DrainTimeout(natsDrainTimeout),
		nats.FlusherTimeout(natsFlusherTimeout),
		nats.RetryOnFailedConnect(!c.StrictConnect),
		nats.DisconnectErrHandler(func(conn *nats.Conn, err error) {
			logger.Error("nats disconnected", err, watermill.LogFields{"client": c.ClientID})
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats reconnected", watermill.LogFields{"url": conn.ConnectedUrl()})
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Debug("nats connection closed", watermill.LogFields{"client": c.ClientID})
		}),
	}

	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nats.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case c.User != "":
		opts = append(opts, nats.UserInfo(c.User, c.Password))
	}

	return opts
}

func jetStreamConfig(cfg configs.MQJetStreamConfig) wmnats.JetStreamConfig {
	if !cfg.Enabled {
		return wmnats.JetStreamConfig{Disabled: true}
	}

	return wmnats.JetStreamConfig{
		AutoProvision: cfg.AutoProvision,
		TrackMsgId:    cfg.TrackMsgID,
		AckAsync:      cfg.AckAsync,
		DurablePrefix: cfg.DurablePrefix,
	}
}

// natsFactory 发布端与订阅端各持一条连接，订阅端按 QueueGroup 在实例间分摊审计事件.
func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	var (
		url       = natsServers(cfg)
		opts      = natsOptions(cfg, logger)
		js        = jetStreamConfig(cfg.NATS.JetStream)
		marshaler = &wmnats.JSONMarshaler{}
	)

	logger.Info("connecting nats", watermill.LogFields{
		"url":         url,
		"jetstream":   cfg.NATS.JetStream.Enabled,
		"queue_group": cfg.NATS.QueueGroup,
	})

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   js,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              url,
		NatsOptions:      opts,
		JetStream:        js,
		Unmarshaler:      marshaler,
		QueueGroupPrefix: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	return pub, sub, nil
}
