// Package gochannel runs the messaging interfaces on an in-process watermill
// pub/sub, used when no Kafka brokers are configured.
package gochannel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
)

// Broker adapts a watermill GoChannel to messaging.Publisher and messaging.Subscriber.
type Broker struct {
	pubsub *gochannel.GoChannel
	log    *zap.Logger
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// New creates an in-process broker.
func New(log *zap.Logger) *Broker {
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, NewLogger(log))
	return &Broker{pubsub: ps, log: log}
}

func (b *Broker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("key", key)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Consume ignores groupID: every subscriber of a GoChannel topic receives every message.
func (b *Broker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		b.log.Error("Failed to subscribe", zap.String("topic", topic), zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Consumer shutting down", zap.String("topic", topic))
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				b.log.Error("Error handling message", zap.String("topic", topic), zap.String("group", groupID), zap.Error(err))
			}
			msg.Ack()
		}
	}
}

// Close stops the pub/sub and closes every subscription channel.
func (b *Broker) Close() error {
	return b.pubsub.Close()
}
