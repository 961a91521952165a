package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/workledger/backend/internal/domain/shared"
)

// EmployeePayment records one employee's earned share of a processed work
// record. Rows are written when payment processing runs and form the
// payout history.
type EmployeePayment struct {
	shared.Entity
	EmployeeID     int64           `gorm:"not null"`
	WorkRecordID   int64           `gorm:"not null"`
	AmountEarned   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CompletionDate time.Time       `gorm:"not null"`
	IsPaid         bool            `gorm:"not null;default:false"`
	PaidDate       *time.Time
}

// TableName returns the table name for GORM
func (EmployeePayment) TableName() string {
	return "employee_payments"
}

// NewEmployeePayment creates a payment row for an employee's share
func NewEmployeePayment(employeeID, workRecordID int64, amountEarned decimal.Decimal, completionDate time.Time) (*EmployeePayment, error) {
	if employeeID <= 0 || workRecordID <= 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment must reference a saved employee and work record")
	}
	if amountEarned.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount earned cannot be negative")
	}
	return &EmployeePayment{
		EmployeeID:     employeeID,
		WorkRecordID:   workRecordID,
		AmountEarned:   amountEarned,
		CompletionDate: completionDate,
	}, nil
}

// MarkPaid stamps the payout
func (p *EmployeePayment) MarkPaid(now time.Time) {
	if p.IsPaid {
		return
	}
	p.IsPaid = true
	p.PaidDate = &now
}
