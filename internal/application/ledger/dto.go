package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	domain "github.com/workledger/backend/internal/domain/ledger"
)

// SaveClientRequest carries the fields for creating or updating a client.
// A zero ID means create.
type SaveClientRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

// JobInput is one job row in a save-client-with-jobs or batch-insert request
type JobInput struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Name      string          `json:"name" validate:"required,max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
	UnitLabel string          `json:"unit_label" validate:"max=50"`
}

// SaveEmployeeRequest carries the fields for creating or updating an employee
type SaveEmployeeRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Address string `json:"address" validate:"max=500"`
}

// SaveWorkRecordRequest carries the fields for creating a work record.
// The financial split is derived server-side from the job's unit price;
// totals supplied by the caller are ignored.
type SaveWorkRecordRequest struct {
	ID             int64           `json:"id"`
	ClientID       int64           `json:"client_id" validate:"required,gt=0"`
	JobID          int64           `json:"job_id" validate:"required,gt=0"`
	WorkDate       time.Time       `json:"work_date"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	EmployeeIDs    []int64         `json:"employee_ids"`
}

// UpdateWorkRecordRequest carries a full update of an existing record.
// Flag transitions are forward-only: clearing a set flag is rejected, and
// setting one stamps the matching date.
type UpdateWorkRecordRequest struct {
	ID                 int64           `json:"id" validate:"required,gt=0"`
	WorkDate           time.Time       `json:"work_date"`
	Quantity           decimal.Decimal `json:"quantity" validate:"required"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	EmployeeIDs        []int64         `json:"employee_ids"`
	IsJobCompleted     bool            `json:"is_job_completed"`
	IsPaid             bool            `json:"is_paid"`
	IsPaymentProcessed bool            `json:"is_payment_processed"`
}

// WorkRecordFilter narrows period queries. Zero values mean "no filter".
type WorkRecordFilter struct {
	ClientID      int64
	EmployeeID    int64
	CompletedOnly bool
	UnpaidOnly    bool
}

// ClientResponse is the outward representation of a client
type ClientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientWithJobsResponse is a client together with its jobs
type ClientWithJobsResponse struct {
	ClientResponse
	Jobs []JobResponse `json:"jobs"`
}

// JobResponse is the outward representation of a job
type JobResponse struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitLabel string          `json:"unit_label"`
}

// EmployeeResponse is the outward representation of an employee
type EmployeeResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	PaidEarnings   decimal.Decimal `json:"paid_earnings"`
	UnpaidEarnings decimal.Decimal `json:"unpaid_earnings"`
}

// WorkRecordResponse is the outward representation of a work record
type WorkRecordResponse struct {
	ID                 int64           `json:"id"`
	ClientID           int64           `json:"client_id"`
	JobID              int64           `json:"job_id"`
	WorkDate           time.Time       `json:"work_date"`
	Quantity           decimal.Decimal `json:"quantity"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AdminCommission    decimal.Decimal `json:"admin_commission"`
	EmployeePool       decimal.Decimal `json:"employee_pool"`
	AmountPerEmployee  decimal.Decimal `json:"amount_per_employee"`
	EmployeeIDs        []int64         `json:"employee_ids"`
	EmployeeCount      int             `json:"employee_count"`
	IsJobCompleted     bool            `json:"is_job_completed"`
	IsPaid             bool            `json:"is_paid"`
	IsPaymentProcessed bool            `json:"is_payment_processed"`
	CompletedDate      *time.Time      `json:"completed_date,omitempty"`
	PaidDate           *time.Time      `json:"paid_date,omitempty"`
}

// PagedResponse wraps a page of results with the total row count
type PagedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Take  int   `json:"take"`
}

// EmployeeEarningsRow is one employee's aggregated earnings over a period
type EmployeeEarningsRow struct {
	Rank       int             `json:"rank"`
	EmployeeID int64           `json:"employee_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Earnings   decimal.Decimal `json:"earnings"`
	JobCount   int             `json:"job_count"`
}

// ClientEarningsRow is one client's aggregated revenue over a period
type ClientEarningsRow struct {
	ClientID     int64           `json:"client_id"`
	Name         string          `json:"name"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	RecordCount  int             `json:"record_count"`
}

// ToClientResponse converts a domain client to its response form
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToJobResponse converts a domain job to its response form
func ToJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		ClientID:  j.ClientID,
		Name:      j.Name,
		UnitPrice: j.UnitPrice,
		UnitLabel: j.UnitLabel,
	}
}

// ToEmployeeResponse converts a domain employee to its response form
func ToEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		Name:           e.Name,
		Phone:          e.Phone,
		Address:        e.Address,
		TotalEarnings:  e.TotalEarnings,
		PaidEarnings:   e.PaidEarnings,
		UnpaidEarnings: e.UnpaidEarnings(),
	}
}

// ToWorkRecordResponse converts a domain work record to its response form
func ToWorkRecordResponse(w *domain.WorkRecord) WorkRecordResponse {
	return WorkRecordResponse{
		ID:                 w.ID,
		ClientID:           w.ClientID,
		JobID:              w.JobID,
		WorkDate:           w.WorkDate,
		Quantity:           w.Quantity,
		CommissionRate:     w.CommissionRate,
		TotalAmount:        w.TotalAmount,
		AdminCommission:    w.AdminCommission,
		EmployeePool:       w.EmployeePool,
		AmountPerEmployee:  w.AmountPerEmployee,
		EmployeeIDs:        w.AssignedEmployeeIDs(),
		EmployeeCount:      w.EmployeeCount,
		IsJobCompleted:     w.IsJobCompleted,
		IsPaid:             w.IsPaid,
		IsPaymentProcessed: w.IsPaymentProcessed,
		CompletedDate:      w.CompletedDate,
		PaidDate:           w.PaidDate,
	}
}
