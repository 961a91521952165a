package ledger

import (
	"time"

	"github.com/workledger/backend/internal/domain/shared"
)

// EmployeeWorkRecord is the join row associating an employee with a work
// record. It is the authoritative representation of the assignment; the
// delimited list on WorkRecord is derived from these rows.
type EmployeeWorkRecord struct {
	shared.Entity
	EmployeeID   int64     `gorm:"not null"`
	WorkRecordID int64     `gorm:"not null"`
	AddedDate    time.Time `gorm:"not null"`
	IsPaid       bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (EmployeeWorkRecord) TableName() string {
	return "employee_work_records"
}

// NewEmployeeWorkRecord creates a join row for an assignment
func NewEmployeeWorkRecord(employeeID, workRecordID int64, addedDate time.Time) (*EmployeeWorkRecord, error) {
	if employeeID <= 0 || workRecordID <= 0 {
		return nil, shared.NewDomainError("INVALID_ASSOCIATION", "Association must reference a saved employee and work record")
	}
	return &EmployeeWorkRecord{
		EmployeeID:   employeeID,
		WorkRecordID: workRecordID,
		AddedDate:    addedDate,
	}, nil
}
