package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/workledger/backend/internal/domain/shared"
)

var oneHundred = decimal.NewFromInt(100)

// WorkRecord documents one instance of completed-or-pending work: a client,
// a job, a date, a quantity, and the set of employees who share the
// employee pool.
//
// The assigned employees are represented two ways: the EmployeeIDs delimited
// list kept on the record itself, and EmployeeWorkRecord join rows. The join
// rows are the source of truth; the delimited list is a denormalized summary
// rewritten whenever the assignment changes.
type WorkRecord struct {
	shared.Entity
	ClientID           int64           `gorm:"not null" validate:"required,gt=0"`
	JobID              int64           `gorm:"not null" validate:"required,gt=0"`
	WorkDate           time.Time       `gorm:"not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CommissionRate     decimal.Decimal `gorm:"type:decimal(10,4);not null"` // percent of total kept by admin
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AdminCommission    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EmployeePool       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPerEmployee  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EmployeeIDs        string          `gorm:"type:varchar(500)"`
	EmployeeCount      int             `gorm:"not null;default:0"`
	IsJobCompleted     bool            `gorm:"not null;default:false"`
	IsPaid             bool            `gorm:"not null;default:false"`
	IsPaymentProcessed bool            `gorm:"not null;default:false"`
	CompletedDate      *time.Time
	PaidDate           *time.Time
}

// TableName returns the table name for GORM
func (WorkRecord) TableName() string {
	return "work_records"
}

// NewWorkRecord creates an open work record and derives its financial split
// from the job's unit price. The total is always recomputed from quantity
// and unit price; caller-supplied totals are not trusted.
func NewWorkRecord(clientID int64, job *Job, workDate time.Time, quantity, commissionRate decimal.Decimal) (*WorkRecord, error) {
	if clientID <= 0 {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Work record must reference a client")
	}
	if job == nil || job.ID <= 0 {
		return nil, shared.NewDomainError("INVALID_JOB", "Work record must reference a saved job")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(oneHundred) {
		return nil, shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 100")
	}

	record := &WorkRecord{
		ClientID:       clientID,
		JobID:          job.ID,
		WorkDate:       workDate,
		Quantity:       quantity,
		CommissionRate: commissionRate,
	}
	record.RecalculateSplit(job.UnitPrice)
	return record, nil
}

// RecalculateSplit derives the financial fields from quantity, unit price,
// commission rate, and the current employee count. The employee pool is the
// exact remainder after the rounded admin commission so the two always sum
// back to the total.
func (w *WorkRecord) RecalculateSplit(unitPrice decimal.Decimal) {
	w.TotalAmount = w.Quantity.Mul(unitPrice).Round(2)
	w.AdminCommission = w.TotalAmount.Mul(w.CommissionRate).Div(oneHundred).Round(2)
	w.EmployeePool = w.TotalAmount.Sub(w.AdminCommission)
	if w.EmployeeCount > 0 {
		w.AmountPerEmployee = w.EmployeePool.Div(decimal.NewFromInt(int64(w.EmployeeCount))).Round(2)
	} else {
		w.AmountPerEmployee = decimal.Zero
	}
}

// AssignEmployees replaces the assigned employee set. Duplicate ids are
// collapsed and the per-employee amount is rederived.
func (w *WorkRecord) AssignEmployees(ids []int64) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	parts := make([]string, len(unique))
	for i, id := range unique {
		parts[i] = strconv.FormatInt(id, 10)
	}
	w.EmployeeIDs = strings.Join(parts, ",")
	w.EmployeeCount = len(unique)

	if w.EmployeeCount > 0 {
		w.AmountPerEmployee = w.EmployeePool.Div(decimal.NewFromInt(int64(w.EmployeeCount))).Round(2)
	} else {
		w.AmountPerEmployee = decimal.Zero
	}
}

// AssignedEmployeeIDs parses the delimited employee id list. An empty string
// yields an empty slice; malformed fragments are skipped.
func (w *WorkRecord) AssignedEmployeeIDs() []int64 {
	return ParseEmployeeIDs(w.EmployeeIDs)
}

// ContainsEmployee reports whether the given employee is assigned
func (w *WorkRecord) ContainsEmployee(employeeID int64) bool {
	for _, id := range w.AssignedEmployeeIDs() {
		if id == employeeID {
			return true
		}
	}
	return false
}

// MarkCompleted transitions the record to completed and stamps the
// completion date. Completing an already-completed record is a no-op.
func (w *WorkRecord) MarkCompleted(now time.Time) {
	if w.IsJobCompleted {
		return
	}
	w.IsJobCompleted = true
	w.CompletedDate = &now
}

// MarkPaid transitions a completed record to paid and stamps the paid date.
func (w *WorkRecord) MarkPaid(now time.Time) error {
	if !w.IsJobCompleted {
		return shared.NewDomainError("INVALID_STATE", "Work record must be completed before it can be paid")
	}
	if w.IsPaid {
		return nil
	}
	w.IsPaid = true
	w.PaidDate = &now
	return nil
}

// MarkPaymentProcessed transitions a paid record to payment-processed.
func (w *WorkRecord) MarkPaymentProcessed() error {
	if !w.IsPaid {
		return shared.NewDomainError("INVALID_STATE", "Work record must be paid before its payment can be processed")
	}
	w.IsPaymentProcessed = true
	return nil
}

// ParseEmployeeIDs parses a delimited employee id list into integers.
// The legacy form uses commas; surrounding whitespace and empty fragments
// are tolerated.
func ParseEmployeeIDs(s string) []int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
