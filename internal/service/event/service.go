package event

import (
	"context"
	"fmt"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
)

// Emit records an event in the outbox of store. Called with a transactional
// store the event commits or rolls back together with the change it reports.
func Emit(ctx context.Context, store repository.Store, eventType string, payload interface{}) error {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	if err := store.Outbox().Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}
