package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelPublisher is the in-process fallback used when no Kafka brokers are
// configured. Events go to a gochannel pub/sub and are dropped unless
// something subscribes, which keeps local development broker-free.
type ChannelPublisher struct {
	pubsub *gochannel.GoChannel
	topic  string
}

func NewChannelPublisher(topic string, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger)),
		topic:  topic,
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	return p.pubsub.Publish(p.topic, msg)
}

// Subscribe exposes the underlying pub/sub for in-process consumers
func (p *ChannelPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, p.topic)
}

func (p *ChannelPublisher) Close() error {
	return p.pubsub.Close()
}
