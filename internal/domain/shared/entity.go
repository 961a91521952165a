package shared

import "time"

// Identifiable is implemented by entities with an integer identity.
// An identity of zero means the entity has not been persisted yet.
type Identifiable interface {
	EntityID() int64
	SetEntityID(id int64)
}

// Auditable is implemented by entities that carry creation and update
// timestamps maintained by the persistence layer.
type Auditable interface {
	TouchCreated(now time.Time)
	TouchUpdated(now time.Time)
}

// Entity provides the common identity and audit fields for all entities.
type Entity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// EntityID returns the persisted identity, zero if not yet saved
func (e *Entity) EntityID() int64 {
	return e.ID
}

// SetEntityID sets the persisted identity
func (e *Entity) SetEntityID(id int64) {
	e.ID = id
}

// TouchCreated stamps both audit timestamps on first insert
func (e *Entity) TouchCreated(now time.Time) {
	e.CreatedAt = now
	e.UpdatedAt = now
}

// TouchUpdated stamps the update timestamp
func (e *Entity) TouchUpdated(now time.Time) {
	e.UpdatedAt = now
}
