package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(Config{URL: "://nope"}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestPublishTripsBreaker(t *testing.T) {
	// Nothing listens on port 1, so every publish fails fast.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	m := metrics.New("test", nil)
	b := newBroker(client, Config{FailureThreshold: 2, OpenTimeout: time.Minute}, zerolog.Nop(), m)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := b.Publish(ctx, "homecare.patient.created", []byte(`{}`))
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())
	err := b.Publish(ctx, "homecare.patient.created", []byte(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
