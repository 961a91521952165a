package ledger

import "github.com/workledger/backend/internal/domain/shared"

// Event types published after successful writes. Caches subscribe to these
// to invalidate their snapshots.
const (
	EventClientChanged     = "ledger.client.changed"
	EventEmployeeChanged   = "ledger.employee.changed"
	EventWorkRecordChanged = "ledger.work_record.changed"
)

// ClientChangedEvent signals that a client row was inserted, updated, or deleted
type ClientChangedEvent struct {
	shared.BaseDomainEvent
}

// NewClientChangedEvent creates a client change event
func NewClientChangedEvent(clientID int64) *ClientChangedEvent {
	return &ClientChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventClientChanged, "Client", clientID),
	}
}

// EmployeeChangedEvent signals that an employee row was inserted, updated, or deleted
type EmployeeChangedEvent struct {
	shared.BaseDomainEvent
}

// NewEmployeeChangedEvent creates an employee change event
func NewEmployeeChangedEvent(employeeID int64) *EmployeeChangedEvent {
	return &EmployeeChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEmployeeChanged, "Employee", employeeID),
	}
}

// WorkRecordChangedEvent signals that a work record or its associations changed
type WorkRecordChangedEvent struct {
	shared.BaseDomainEvent
}

// NewWorkRecordChangedEvent creates a work record change event
func NewWorkRecordChangedEvent(workRecordID int64) *WorkRecordChangedEvent {
	return &WorkRecordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWorkRecordChanged, "WorkRecord", workRecordID),
	}
}
