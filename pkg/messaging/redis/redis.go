package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/homecare-api/pkg/messaging"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

type RedisBroker struct {
	client  *redis.Client
	cb      *gobreaker.CircuitBreaker
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
	// FailureThreshold consecutive publish failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

var _ messaging.Broker = (*RedisBroker)(nil)

func NewRedisBroker(config Config, logger zerolog.Logger, m *metrics.Metrics) (*RedisBroker, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newBroker(client, config, logger, m), nil
}

func newBroker(client *redis.Client, config Config, logger zerolog.Logger, m *metrics.Metrics) *RedisBroker {
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := config.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-broker",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &RedisBroker{client: client, cb: cb, logger: logger, metrics: m}
}

func (b *RedisBroker) observe(op string, start time.Time, err error) {
	if b.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	b.metrics.RedisOperations.WithLabelValues(op, status).Inc()
	b.metrics.RedisLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Publish sends payload through the circuit breaker. While the breaker is
// open calls fail immediately with gobreaker.ErrOpenState.
func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	start := time.Now()
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.client.Publish(ctx, channel, payload).Err()
	})
	b.observe("publish", start, err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	var pubsub *redis.PubSub
	if strings.Contains(channel, "*") {
		pubsub = b.client.PSubscribe(ctx, channel)
	} else {
		pubsub = b.client.Subscribe(ctx, channel)
	}
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	msgChan := make(chan []byte, 100)
	go func() {
		defer func() {
			pubsub.Close()
			close(msgChan)
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				msgChan <- []byte(msg.Payload)
			}
		}
	}()

	return msgChan, nil
}

// State exposes the breaker state for readiness checks.
func (b *RedisBroker) State() gobreaker.State {
	return b.cb.State()
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
