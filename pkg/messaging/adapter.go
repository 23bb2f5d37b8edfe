package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultChannelPrefix namespaces every published event type.
const DefaultChannelPrefix = "homecare"

// Envelope is the wire format of a published event.
type Envelope struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventPublisher adapts a Broker to typed events, one channel per type.
type EventPublisher struct {
	broker Broker
	prefix string
}

func NewEventPublisher(broker Broker, prefix string) *EventPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &EventPublisher{broker: broker, prefix: prefix}
}

// Channel returns the channel an event type is published on.
func (p *EventPublisher) Channel(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *EventPublisher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return p.broker.Publish(ctx, p.Channel(env.Type), data)
}

// SubscribeAll delivers every event under the publisher's prefix.
func (p *EventPublisher) SubscribeAll(ctx context.Context) (<-chan Envelope, error) {
	raw, err := p.broker.Subscribe(ctx, p.prefix+".*")
	if err != nil {
		return nil, err
	}

	out := make(chan Envelope)
	go func() {
		defer close(out)
		for msg := range raw {
			var env Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
