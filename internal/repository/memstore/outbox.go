package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
)

type outboxRepository struct {
	s *Store
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}
	return r.s.do(func(d *data) error {
		event.ID = d.nextID("outbox_events")
		event.Status = model.OutboxStatusPending
		event.CreatedAt = r.s.now()
		event.UpdatedAt = event.CreatedAt
		stored := *event
		stored.Payload = append([]byte(nil), event.Payload...)
		d.outbox[event.ID] = stored
		return nil
	})
}

func (r *outboxRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	out := []*model.OutboxEvent{}
	now := r.s.now()
	err := r.s.do(func(d *data) error {
		for _, evt := range d.outbox {
			if evt.Status != model.OutboxStatusPending && evt.Status != model.OutboxStatusRetry {
				continue
			}
			if evt.RetryAt != nil && evt.RetryAt.After(now) {
				continue
			}
			evt := evt
			out = append(out, &evt)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *outboxRepository) update(id int64, fn func(evt *model.OutboxEvent)) error {
	return r.s.do(func(d *data) error {
		evt, ok := d.outbox[id]
		if !ok {
			return nil
		}
		fn(&evt)
		evt.UpdatedAt = r.s.now()
		d.outbox[id] = evt
		return nil
	})
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	return r.update(id, func(evt *model.OutboxEvent) {
		ts := r.s.now()
		evt.Status = model.OutboxStatusProcessed
		evt.ErrorMessage = nil
		evt.ProcessedAt = &ts
	})
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id int64, errMsg string, retryAt time.Time) error {
	return r.update(id, func(evt *model.OutboxEvent) {
		at := retryAt.UTC()
		evt.Status = model.OutboxStatusRetry
		evt.ErrorMessage = &errMsg
		evt.RetryCount++
		evt.RetryAt = &at
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return r.update(id, func(evt *model.OutboxEvent) {
		evt.Status = model.OutboxStatusFailed
		evt.ErrorMessage = &errMsg
		evt.RetryCount++
	})
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.s.do(func(d *data) error {
		for id, evt := range d.outbox {
			if evt.Status == model.OutboxStatusProcessed && evt.ProcessedAt != nil && evt.ProcessedAt.Before(before) {
				delete(d.outbox, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
