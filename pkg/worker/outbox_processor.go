package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/messaging"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("BatchSize must be greater than 0")
	case c.PollInterval <= 0:
		return errors.New("PollInterval must be greater than 0")
	case c.RetryAttempts <= 0:
		return errors.New("RetryAttempts must be greater than 0")
	case c.RetryDelay <= 0:
		return errors.New("RetryDelay must be greater than 0")
	}
	return nil
}

// Publisher sends one outbox event to subscribers.
type Publisher interface {
	Publish(ctx context.Context, env messaging.Envelope) error
}

// BatchResult counts what a single poll did.
type BatchResult struct {
	Processed int
	Retried   int
	Failed    int
}

type OutboxProcessor struct {
	store     repository.Store
	publisher Publisher
	config    OutboxProcessorConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxProcessor(
	store repository.Store,
	publisher Publisher,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &OutboxProcessor{
		store:     store,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor",
		"batch_size", p.config.BatchSize,
		"poll_interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		}
	}
}

// ProcessBatch publishes one batch of due events. The rows stay locked by the
// surrounding transaction, so concurrent workers pick disjoint batches.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (BatchResult, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	var result BatchResult
	err := p.store.WithTx(ctx, func(tx repository.Store) error {
		result = BatchResult{}

		events, err := tx.Outbox().GetPendingWithLock(ctx, p.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		p.metrics.OutboxBatchSize.Set(float64(len(events)))

		for _, event := range events {
			if err := p.processEvent(ctx, tx.Outbox(), event, &result); err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

func (p *OutboxProcessor) processEvent(ctx context.Context, outbox repository.OutboxRepository, event *model.OutboxEvent, result *BatchResult) error {
	pubErr := p.publisher.Publish(ctx, messaging.Envelope{
		ID:        event.ID,
		Type:      event.EventType,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	})

	if pubErr == nil {
		if err := outbox.MarkProcessed(ctx, event.ID); err != nil {
			return fmt.Errorf("failed to mark event %d processed: %w", event.ID, err)
		}
		p.metrics.OutboxEventsProcessed.Inc()
		result.Processed++
		return nil
	}

	errMsg := pubErr.Error()
	if event.RetryCount+1 >= p.config.RetryAttempts {
		if err := outbox.MarkFailed(ctx, event.ID, errMsg); err != nil {
			return fmt.Errorf("failed to mark event %d failed: %w", event.ID, err)
		}
		p.metrics.OutboxEventsFailed.Inc()
		result.Failed++
		p.logger.Error(pubErr, "event publication exhausted retries",
			"event_id", event.ID,
			"event_type", event.EventType,
			"attempts", event.RetryCount+1)
		return nil
	}

	retryAt := p.now().Add(Backoff(p.config.RetryDelay, event.RetryCount))
	if err := outbox.MarkRetry(ctx, event.ID, errMsg, retryAt); err != nil {
		return fmt.Errorf("failed to schedule retry for event %d: %w", event.ID, err)
	}
	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	result.Retried++
	p.logger.Warn("event publication failed, retry scheduled",
		"event_id", event.ID,
		"event_type", event.EventType,
		"retry_at", retryAt.Format(time.RFC3339),
		"error", errMsg)
	return nil
}

// Backoff is delay * 2^retries, capped at one day.
func Backoff(delay time.Duration, retries int) time.Duration {
	const maxBackoff = 24 * time.Hour
	d := delay
	for i := 0; i < retries; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
