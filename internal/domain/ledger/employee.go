package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/workledger/backend/internal/domain/shared"
)

// Employee represents a worker who can be assigned to work records and
// earns a share of each record's employee pool.
type Employee struct {
	shared.Entity
	Name          string          `gorm:"type:varchar(200);not null" validate:"required,max=200"`
	Phone         string          `gorm:"type:varchar(50);not null" validate:"required,max=50"`
	Address       string          `gorm:"type:varchar(500)" validate:"max=500"`
	TotalEarnings decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidEarnings  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates a new employee. Phone is required because it is the
// uniqueness key for employees.
func NewEmployee(name, phone, address string) (*Employee, error) {
	employee := &Employee{
		Name:          strings.TrimSpace(name),
		Phone:         strings.TrimSpace(phone),
		Address:       strings.TrimSpace(address),
		TotalEarnings: decimal.Zero,
		PaidEarnings:  decimal.Zero,
	}
	if employee.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Employee name cannot be empty")
	}
	if employee.Phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Employee phone cannot be empty")
	}
	return employee, nil
}

// UnpaidEarnings returns the portion of total earnings not yet paid out
func (e *Employee) UnpaidEarnings() decimal.Decimal {
	return e.TotalEarnings.Sub(e.PaidEarnings)
}

// AccrueEarnings adds a completed work record's per-employee share
func (e *Employee) AccrueEarnings(amount decimal.Decimal) {
	e.TotalEarnings = e.TotalEarnings.Add(amount)
}

// RecordPayout moves an amount from owed to paid
func (e *Employee) RecordPayout(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payout amount cannot be negative")
	}
	e.PaidEarnings = e.PaidEarnings.Add(amount)
	return nil
}
