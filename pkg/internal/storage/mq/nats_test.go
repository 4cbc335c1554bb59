package mq

import (
	"testing"

	"github.com/yeisme/dataroom/pkg/configs"
)

func TestNATSServers(t *testing.T) {
	tests := []struct {
		name string
		cfg  configs.MQConfig
		want string
	}{
		{"bare host", configs.MQConfig{Common: configs.MQCommonConfig{URL: "localhost:4222"}}, "nats://localhost:4222"},
		{"with scheme", configs.MQConfig{Common: configs.MQCommonConfig{URL: "tls://mq:4222"}}, "tls://mq:4222"},
		{"cluster wins", configs.MQConfig{
			Common: configs.MQCommonConfig{URL: "ignored:4222"},
			NATS:   configs.MQNATSConfig{ClusterURLs: []string{"nats://a:4222", "nats://b:4222"}},
		}, "nats://a:4222,nats://b:4222"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := natsServers(&tt.cfg); got != tt.want {
				t.Errorf("natsServers() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJetStreamConfig(t *testing.T) {
	if js := jetStreamConfig(configs.MQJetStreamConfig{AutoProvision: true}); !js.Disabled || js.AutoProvision {
		t.Errorf("disabled jetstream should ignore other flags: %+v", js)
	}

	js := jetStreamConfig(configs.MQJetStreamConfig{Enabled: true, TrackMsgID: true, DurablePrefix: "dataroom"})
	if js.Disabled || !js.TrackMsgId || js.DurablePrefix != "dataroom" {
		t.Errorf("unexpected jetstream config: %+v", js)
	}
}
