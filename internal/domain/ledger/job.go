package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/workledger/backend/internal/domain/shared"
)

// Job represents a unit-priced type of work offered to a client,
// e.g. "hem trousers" at 2.50 per piece.
type Job struct {
	shared.Entity
	Name      string          `gorm:"type:varchar(200);not null" validate:"required,max=200"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" validate:"required"`
	UnitLabel string          `gorm:"type:varchar(50)" validate:"max=50"`
	ClientID  int64           `gorm:"not null" validate:"required,gt=0"`
}

// TableName returns the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// NewJob creates a new job for a client
func NewJob(clientID int64, name string, unitPrice decimal.Decimal, unitLabel string) (*Job, error) {
	job := &Job{
		Name:      strings.TrimSpace(name),
		UnitPrice: unitPrice,
		UnitLabel: strings.TrimSpace(unitLabel),
		ClientID:  clientID,
	}
	return job, job.Validate()
}

// Validate checks the job invariants. A job referenced by work records must
// carry a positive unit price, so zero and negative prices are rejected at
// creation time.
func (j *Job) Validate() error {
	if j.ClientID <= 0 {
		return shared.NewDomainError("INVALID_CLIENT", "Job must belong to a client")
	}
	if j.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Job name cannot be empty")
	}
	if !j.UnitPrice.IsPositive() {
		return shared.NewDomainError("INVALID_UNIT_PRICE", "Job unit price must be greater than zero")
	}
	return nil
}
