package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	domain "github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkRecordService handles work record lifecycle operations: creation with
// a derived financial split, forward-only status transitions, period
// queries, and batch job insertion.
type WorkRecordService struct {
	db           *persistence.Database
	recordRepo   *persistence.Repository[domain.WorkRecord]
	jobRepo      *persistence.Repository[domain.Job]
	assocRepo    *persistence.Repository[domain.EmployeeWorkRecord]
	paymentRepo  *persistence.Repository[domain.EmployeePayment]
	employeeRepo *persistence.Repository[domain.Employee]
	validate     *validator.Validate
	events       shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewWorkRecordService creates a new WorkRecordService
func NewWorkRecordService(
	db *persistence.Database,
	recordRepo *persistence.Repository[domain.WorkRecord],
	jobRepo *persistence.Repository[domain.Job],
	assocRepo *persistence.Repository[domain.EmployeeWorkRecord],
	paymentRepo *persistence.Repository[domain.EmployeePayment],
	employeeRepo *persistence.Repository[domain.Employee],
	events shared.EventPublisher,
	logger *zap.Logger,
) *WorkRecordService {
	return &WorkRecordService{
		db:           db,
		recordRepo:   recordRepo,
		jobRepo:      jobRepo,
		assocRepo:    assocRepo,
		paymentRepo:  paymentRepo,
		employeeRepo: employeeRepo,
		validate:     validator.New(),
		events:       events,
		logger:       logger.Named("work_record_service"),
		now:          time.Now,
	}
}

// SaveWorkRecord creates a work record. The financial split is derived from
// the referenced job's unit price; the record and its association rows are
// written in one transaction, with the delimited list kept as the derived
// summary of the join rows.
func (s *WorkRecordService) SaveWorkRecord(ctx context.Context, req SaveWorkRecordRequest) (*WorkRecordResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("work record references job %d: %w", req.JobID, err)
	}
	if job.ClientID != req.ClientID {
		return nil, shared.NewDomainError("JOB_CLIENT_MISMATCH", "Job does not belong to the given client")
	}

	record, err := domain.NewWorkRecord(req.ClientID, job, req.WorkDate, req.Quantity, req.CommissionRate)
	if err != nil {
		return nil, err
	}
	record.ID = req.ID
	record.AssignEmployees(req.EmployeeIDs)

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		id, err := s.recordRepo.WithTx(tx).Save(ctx, record)
		if err != nil {
			return err
		}
		record.ID = id
		return s.rewriteAssociations(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, record.ID)
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// UpdateWorkRecord replaces an existing record's editable fields and applies
// flag transitions. Transitions are forward-only: clearing a set flag is
// rejected, and newly set flags stamp their dates.
func (s *WorkRecordService) UpdateWorkRecord(ctx context.Context, req UpdateWorkRecordRequest) (*WorkRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if record.IsJobCompleted && !req.IsJobCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "A completed work record cannot be reopened")
	}
	if record.IsPaid && !req.IsPaid {
		return nil, shared.NewDomainError("INVALID_STATE", "A paid work record cannot be unpaid")
	}
	if record.IsPaymentProcessed && !req.IsPaymentProcessed {
		return nil, shared.NewDomainError("INVALID_STATE", "A processed work record cannot be unprocessed")
	}

	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}

	job, err := s.jobRepo.FindByID(ctx, record.JobID)
	if err != nil {
		return nil, fmt.Errorf("work record references job %d: %w", record.JobID, err)
	}

	record.WorkDate = req.WorkDate
	record.Quantity = req.Quantity
	record.CommissionRate = req.CommissionRate
	record.AssignEmployees(req.EmployeeIDs)
	record.RecalculateSplit(job.UnitPrice)

	now := s.now()
	if req.IsJobCompleted {
		record.MarkCompleted(now)
	}
	if req.IsPaid {
		if err := record.MarkPaid(now); err != nil {
			return nil, err
		}
	}
	newlyProcessed := req.IsPaymentProcessed && !record.IsPaymentProcessed
	if newlyProcessed {
		if err := record.MarkPaymentProcessed(); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.recordRepo.WithTx(tx).Update(ctx, record); err != nil {
			return err
		}
		if err := s.rewriteAssociations(ctx, tx, record); err != nil {
			return err
		}
		if newlyProcessed {
			// Processing through an update carries the same obligations as
			// MarkPaymentProcessed: payment rows and accrued earnings.
			return s.writePayments(ctx, tx, record, s.completionDate(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, record.ID)
	if newlyProcessed {
		s.publishEmployees(ctx, record.AssignedEmployeeIDs())
	}
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// GetWorkRecord retrieves one work record by identity
func (s *WorkRecordService) GetWorkRecord(ctx context.Context, id int64) (*WorkRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// GetWorkRecordsByPeriod returns the work records whose work date falls in
// the named period, newest first, narrowed by the optional filter. The
// employee filter resolves through the association table.
func (s *WorkRecordService) GetWorkRecordsByPeriod(ctx context.Context, periodToken string, filter WorkRecordFilter) ([]WorkRecordResponse, error) {
	window := domain.ResolvePeriod(periodToken, s.now())

	scopes := []persistence.Scope{
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
		persistence.OrderBy("work_date desc, id desc"),
	}
	if filter.ClientID > 0 {
		scopes = append(scopes, persistence.Where("client_id = ?", filter.ClientID))
	}
	if filter.EmployeeID > 0 {
		scopes = append(scopes, persistence.Where(
			"id IN (SELECT work_record_id FROM employee_work_records WHERE employee_id = ?)",
			filter.EmployeeID,
		))
	}
	if filter.CompletedOnly {
		scopes = append(scopes, persistence.Where("is_job_completed = ?", true))
	}
	if filter.UnpaidOnly {
		scopes = append(scopes, persistence.Where("is_paid = ?", false))
	}

	records, err := s.recordRepo.FindFiltered(ctx, scopes...)
	if err != nil {
		return nil, err
	}

	responses := make([]WorkRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, ToWorkRecordResponse(&records[i]))
	}
	return responses, nil
}

// MarkCompleted transitions a record to completed and stamps the completion
// date. Completing twice is a no-op.
func (s *WorkRecordService) MarkCompleted(ctx context.Context, id int64) (*WorkRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.MarkCompleted(s.now())
	if _, err := s.recordRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, id)
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// MarkPaid transitions a completed record to paid. The association rows are
// flagged paid in the same transaction so client aggregation can separate
// paid from unpaid work.
func (s *WorkRecordService) MarkPaid(ctx context.Context, id int64) (*WorkRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := record.MarkPaid(s.now()); err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.recordRepo.WithTx(tx).Update(ctx, record); err != nil {
			return err
		}
		return tx.Model(&domain.EmployeeWorkRecord{}).
			Where("work_record_id = ?", id).
			Update("is_paid", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, id)
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// MarkPaymentProcessed transitions a paid record to payment-processed. One
// EmployeePayment row is written per assigned employee for the per-employee
// share, and each employee's total earnings accrue, all in one transaction.
func (s *WorkRecordService) MarkPaymentProcessed(ctx context.Context, id int64) (*WorkRecordResponse, error) {
	record, err := s.recordRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsPaymentProcessed {
		response := ToWorkRecordResponse(record)
		return &response, nil
	}

	if err := record.MarkPaymentProcessed(); err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.recordRepo.WithTx(tx).Update(ctx, record); err != nil {
			return err
		}
		return s.writePayments(ctx, tx, record, s.completionDate(record))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, id)
	s.publishEmployees(ctx, record.AssignedEmployeeIDs())
	response := ToWorkRecordResponse(record)
	return &response, nil
}

// PayEmployee settles an employee's outstanding payment rows: every unpaid
// EmployeePayment is marked paid and the sum moves from owed to paid on the
// employee, atomically.
func (s *WorkRecordService) PayEmployee(ctx context.Context, employeeID int64) (*EmployeeResponse, error) {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		payments, err := paymentRepo.FindFiltered(ctx,
			persistence.Where("employee_id = ? AND is_paid = ?", employeeID, false))
		if err != nil {
			return err
		}

		now := s.now()
		for i := range payments {
			payment := payments[i]
			payment.MarkPaid(now)
			if _, err := paymentRepo.Update(ctx, &payment); err != nil {
				return err
			}
			if err := employee.RecordPayout(payment.AmountEarned); err != nil {
				return err
			}
		}

		_, err = s.employeeRepo.WithTx(tx).Update(ctx, employee)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEmployees(ctx, []int64{employeeID})
	response := ToEmployeeResponse(employee)
	return &response, nil
}

// SaveJobs inserts a batch of jobs. The whole batch is validated up front;
// nothing is written unless every row passes, and the inserts share one
// transaction.
func (s *WorkRecordService) SaveJobs(ctx context.Context, inputs []JobInput) ([]JobResponse, error) {
	if len(inputs) == 0 {
		return []JobResponse{}, nil
	}

	jobs := make([]*domain.Job, 0, len(inputs))
	for i, input := range inputs {
		if err := s.validate.Struct(input); err != nil {
			return nil, fmt.Errorf("job %d invalid: %w", i, shared.ErrInvalidInput)
		}
		job, err := domain.NewJob(input.ClientID, input.Name, input.UnitPrice, input.UnitLabel)
		if err != nil {
			return nil, fmt.Errorf("job %d invalid: %w", i, err)
		}
		job.ID = input.ID
		jobs = append(jobs, job)
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		jobRepo := s.jobRepo.WithTx(tx)
		for _, job := range jobs {
			if _, err := jobRepo.Save(ctx, job); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, ToJobResponse(job))
	}
	return responses, nil
}

// completionDate returns the record's completion date, falling back to the
// clock when the record was never stamped.
func (s *WorkRecordService) completionDate(record *domain.WorkRecord) time.Time {
	if record.CompletedDate != nil {
		return *record.CompletedDate
	}
	return s.now()
}

// writePayments settles a newly processed record inside the caller's
// transaction: one EmployeePayment row per association for the per-employee
// share, and the share accrues on each employee's total earnings.
func (s *WorkRecordService) writePayments(ctx context.Context, tx *gorm.DB, record *domain.WorkRecord, completionDate time.Time) error {
	assocs, err := s.assocRepo.WithTx(tx).FindFiltered(ctx,
		persistence.Where("work_record_id = ?", record.ID))
	if err != nil {
		return err
	}

	paymentRepo := s.paymentRepo.WithTx(tx)
	employeeRepo := s.employeeRepo.WithTx(tx)
	for _, assoc := range assocs {
		payment, err := domain.NewEmployeePayment(assoc.EmployeeID, record.ID, record.AmountPerEmployee, completionDate)
		if err != nil {
			return err
		}
		if _, err := paymentRepo.Insert(ctx, payment); err != nil {
			return err
		}

		employee, err := employeeRepo.FindByID(ctx, assoc.EmployeeID)
		if err != nil {
			return err
		}
		employee.AccrueEarnings(record.AmountPerEmployee)
		if _, err := employeeRepo.Update(ctx, employee); err != nil {
			return err
		}
	}
	return nil
}

// rewriteAssociations replaces the record's join rows with the current
// assignment. The join rows are the source of truth; the delimited list on
// the record is already the derived summary.
func (s *WorkRecordService) rewriteAssociations(ctx context.Context, tx *gorm.DB, record *domain.WorkRecord) error {
	if err := tx.Where("work_record_id = ?", record.ID).
		Delete(&domain.EmployeeWorkRecord{}).Error; err != nil {
		return err
	}

	assocRepo := s.assocRepo.WithTx(tx)
	addedDate := s.now()
	for _, employeeID := range record.AssignedEmployeeIDs() {
		assoc, err := domain.NewEmployeeWorkRecord(employeeID, record.ID, addedDate)
		if err != nil {
			return err
		}
		assoc.IsPaid = record.IsPaid
		if _, err := assocRepo.Insert(ctx, assoc); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkRecordService) publish(ctx context.Context, recordID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.NewWorkRecordChangedEvent(recordID)); err != nil {
		s.logger.Warn("failed to publish work record change", zap.Int64("work_record_id", recordID), zap.Error(err))
	}
}

func (s *WorkRecordService) publishEmployees(ctx context.Context, employeeIDs []int64) {
	if s.events == nil {
		return
	}
	for _, employeeID := range employeeIDs {
		if err := s.events.Publish(ctx, domain.NewEmployeeChangedEvent(employeeID)); err != nil {
			s.logger.Warn("failed to publish employee change", zap.Int64("employee_id", employeeID), zap.Error(err))
		}
	}
}
