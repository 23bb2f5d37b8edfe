package messaging

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe delivers messages published on channel. A channel containing
	// '*' is treated as a pattern.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// LogBroker writes published messages to the log and fans them out to local
// subscribers. It stands in for redis when the broker is disabled.
type LogBroker struct {
	logger zerolog.Logger

	mu   sync.Mutex
	subs map[string][]chan []byte
}

func NewLogBroker(logger zerolog.Logger) *LogBroker {
	return &LogBroker{logger: logger, subs: make(map[string][]chan []byte)}
}

func (b *LogBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.logger.Info().
		Str("channel", channel).
		RawJSON("payload", payload).
		Msg("event published")

	b.mu.Lock()
	defer b.mu.Unlock()
	for pattern, chans := range b.subs {
		if !Match(pattern, channel) {
			continue
		}
		for _, ch := range chans {
			select {
			case ch <- append([]byte(nil), payload...):
			default:
				b.logger.Warn().Str("channel", channel).Msg("subscriber buffer full, dropping message")
			}
		}
	}
	return nil
}

func (b *LogBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 100)

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		chans := b.subs[channel]
		for i, c := range chans {
			if c == ch {
				b.subs[channel] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (b *LogBroker) Close() error {
	return nil
}

// Match reports whether channel matches pattern, where '*' matches any run of
// characters.
func Match(pattern, channel string) bool {
	for len(pattern) > 0 {
		if pattern[0] == '*' {
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(channel); i++ {
				if Match(pattern, channel[i:]) {
					return true
				}
			}
			return false
		}
		if channel == "" || pattern[0] != channel[0] {
			return false
		}
		pattern, channel = pattern[1:], channel[1:]
	}
	return channel == ""
}
