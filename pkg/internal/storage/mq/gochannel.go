package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/dataroom/pkg/configs"
)

// goChannelBuffer 每个订阅者的输出缓冲.
const goChannelBuffer = 256

func init() {
	RegisterFactory(configs.MQTypeGoChannel, goChannelFactory)
}

// goChannelFactory 创建进程内 pub/sub，发布不阻塞等待 ack.
func goChannelFactory(
	_ context.Context,
	_ *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            goChannelBuffer,
		BlockPublishUntilSubscriberAck: false,
	}, logger)

	return ps, ps, nil
}
