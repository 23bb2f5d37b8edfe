package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
)

// outboxRow scans payload into a plain []byte so the driver buffer is copied.
type outboxRow struct {
	ID           int64              `db:"id"`
	EventType    string             `db:"event_type"`
	Payload      []byte             `db:"payload"`
	Status       model.OutboxStatus `db:"status"`
	ErrorMessage *string            `db:"error_message"`
	RetryCount   int                `db:"retry_count"`
	RetryAt      *time.Time         `db:"retry_at"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
	ProcessedAt  *time.Time         `db:"processed_at"`
}

func (r outboxRow) toModel() *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:           r.ID,
		EventType:    r.EventType,
		Payload:      r.Payload,
		Status:       r.Status,
		ErrorMessage: r.ErrorMessage,
		RetryCount:   r.RetryCount,
		RetryAt:      r.RetryAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ProcessedAt:  r.ProcessedAt,
	}
}

type outboxRepository struct {
	baseRepository
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	event.Status = model.OutboxStatusPending
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt

	id, err := r.insert(ctx, `
		INSERT INTO outbox_events (event_type, payload, status, retry_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)`,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	event.ID = id
	return nil
}

func (r *outboxRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	var rows []outboxRow
	err := r.selectAll(ctx, &rows, `
		SELECT id, event_type, payload, status, error_message, retry_count, retry_at,
			created_at, updated_at, processed_at
		FROM outbox_events
		WHERE status IN (?, ?)
		AND (retry_at IS NULL OR retry_at <= ?)
		ORDER BY id ASC
		LIMIT ?
		FOR UPDATE SKIP LOCKED`,
		model.OutboxStatusPending, model.OutboxStatusRetry, now(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}

	events := make([]*model.OutboxEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toModel()
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	ts := now()
	_, err := r.exec(ctx, `
		UPDATE outbox_events
		SET status = ?, error_message = NULL, processed_at = ?, updated_at = ?
		WHERE id = ?`,
		model.OutboxStatusProcessed, ts, ts, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id int64, errMsg string, retryAt time.Time) error {
	_, err := r.exec(ctx, `
		UPDATE outbox_events
		SET status = ?, error_message = ?, retry_count = retry_count + 1, retry_at = ?, updated_at = ?
		WHERE id = ?`,
		model.OutboxStatusRetry, errMsg, retryAt.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule event retry: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.exec(ctx, `
		UPDATE outbox_events
		SET status = ?, error_message = ?, retry_count = retry_count + 1, updated_at = ?
		WHERE id = ?`,
		model.OutboxStatusFailed, errMsg, now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	rows, err := r.exec(ctx, `
		DELETE FROM outbox_events
		WHERE status = ?
		AND processed_at < ?`,
		model.OutboxStatusProcessed, before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return rows, nil
}
