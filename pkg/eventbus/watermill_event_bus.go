package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillEventBus implements EventBus over a watermill publisher/subscriber
// pair. The default wiring uses the in-memory GoChannel pub/sub: the editor is
// a single-session tool, so the bus only ever crosses goroutines, not hosts.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[EventType]EventHandler
}

// NewGoChannelEventBus creates an event bus over an in-memory channel.
func NewGoChannelEventBus(logger *slog.Logger) *WatermillEventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 1000,
			Persistent:          false,
		},
		watermill.NewSlogLogger(logger),
	)

	return NewWatermillEventBus(pubSub, pubSub)
}

// NewWatermillEventBus creates an event bus from an existing publisher and subscriber.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[EventType]EventHandler),
	}
}

// Publish serializes the event and publishes it keyed by the given key
// (conventionally the tab id, preserving per-tab FIFO for consumers).
func (eb *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.Metadata.Set(EventMetadataKey, key)
	msg.Metadata.Set(EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(Topic, msg)
}

// Handle registers a handler for an event type. Register handlers before
// calling Subscribe.
func (eb *WatermillEventBus) Handle(eventType EventType, handler EventHandler) {
	eb.subscriptions[eventType] = handler
}

// Subscribe starts consuming events and dispatching them to registered
// handlers in arrival order.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventType := EventType(msg.Metadata.Get(EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			var event any

			switch eventType {
			case GraphChangedEvent:
				event = &GraphChanged{}
			case TabClosedEvent:
				event = &TabClosed{}
			default:
				msg.Nack()

				continue
			}

			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

// Close shuts the underlying publisher down.
func (eb *WatermillEventBus) Close() error {
	return eb.publisher.Close()
}
