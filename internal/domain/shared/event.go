package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a change that occurred in the domain.
// Events carry the identity of the entity they concern so that
// subscribers (caches, projections) can invalidate selectively.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	EntityID() int64
	EntityType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Entity     int64     `json:"entity_id"`
	EntityKind string    `json:"entity_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// EntityID returns the identity of the entity the event concerns
func (e *BaseDomainEvent) EntityID() int64 {
	return e.Entity
}

// EntityType returns the logical entity name
func (e *BaseDomainEvent) EntityType() string {
	return e.EntityKind
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, entityKind string, entityID int64) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Timestamp:  time.Now(),
		Entity:     entityID,
		EntityKind: entityKind,
	}
}

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types
	// If no event types are provided, the handler's own types are used
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
}
