package audit

import (
	"context"
	"fmt"
)

// DefaultTopic is where audit events are published on the bus
const DefaultTopic = "pancy/moderation/audit"

// Publisher is the part of the MQTT communicator used by the sink
type Publisher interface {
	Publish(topic string, payload interface{}) error
	IsConnected() bool
}

// MQTTSink mirrors audit events to an MQTT topic
type MQTTSink struct {
	pub   Publisher
	topic string
}

func NewMQTTSink(pub Publisher, topic string) *MQTTSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTSink{pub: pub, topic: topic}
}

func (s *MQTTSink) Publish(ctx context.Context, ev Event) error {
	if !s.pub.IsConnected() {
		return fmt.Errorf("mqtt %s: broker desconectado", s.topic)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.pub.Publish(s.topic, ev); err != nil {
		return fmt.Errorf("mqtt %s: %w", s.topic, err)
	}
	return nil
}
