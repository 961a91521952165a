package cache

import (
	"context"

	"github.com/workledger/backend/internal/domain/shared"
)

// invalidationHandler drops a cache snapshot whenever a matching change
// event is published.
type invalidationHandler struct {
	invalidate func()
	types      []string
}

// NewInvalidationHandler creates a handler that invalidates on the given
// event types
func NewInvalidationHandler(invalidate func(), eventTypes ...string) shared.EventHandler {
	return &invalidationHandler{invalidate: invalidate, types: eventTypes}
}

// Handle implements shared.EventHandler
func (h *invalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.invalidate()
	return nil
}

// EventTypes implements shared.EventHandler
func (h *invalidationHandler) EventTypes() []string {
	return h.types
}
