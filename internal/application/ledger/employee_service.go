package ledger

import (
	"context"

	domain "github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// EmployeeService handles employee business operations
type EmployeeService struct {
	employeeRepo *persistence.Repository[domain.Employee]
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(
	employeeRepo *persistence.Repository[domain.Employee],
	events shared.EventPublisher,
	logger *zap.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		events:       events,
		logger:       logger.Named("employee_service"),
	}
}

// SaveEmployee creates or updates an employee. Phone is the uniqueness key;
// a second employee with the same phone is rejected before the store's
// unique index would.
func (s *EmployeeService) SaveEmployee(ctx context.Context, req SaveEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := domain.NewEmployee(req.Name, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	employee.ID = req.ID

	matches, err := s.employeeRepo.FindFiltered(ctx, persistence.Where("phone = ?", employee.Phone))
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].ID != employee.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An employee with this phone already exists")
		}
	}

	if req.ID > 0 {
		existing, err := s.employeeRepo.FindByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		// Earnings are maintained by payment processing, not by profile edits
		employee.TotalEarnings = existing.TotalEarnings
		employee.PaidEarnings = existing.PaidEarnings
		employee.CreatedAt = existing.CreatedAt
	}

	id, err := s.employeeRepo.Save(ctx, employee)
	if err != nil {
		return nil, err
	}
	employee.ID = id

	s.publish(ctx, id)

	response := ToEmployeeResponse(employee)
	return &response, nil
}

// GetEmployee retrieves one employee by identity
func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (*EmployeeResponse, error) {
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(employee)
	return &response, nil
}

// GetEmployeesPaged returns one page of employees ordered by name
func (s *EmployeeService) GetEmployeesPaged(ctx context.Context, skip, take int) (*PagedResponse[EmployeeResponse], error) {
	total, err := s.employeeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.FindFiltered(ctx,
		persistence.OrderBy("lower(name) asc"),
		persistence.Paged(skip, take),
	)
	if err != nil {
		return nil, err
	}

	items := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, ToEmployeeResponse(&employees[i]))
	}
	return &PagedResponse[EmployeeResponse]{Items: items, Total: total, Skip: skip, Take: take}, nil
}

// DeleteEmployee removes an employee
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if _, err := s.employeeRepo.FindByID(ctx, id); err != nil {
		return err
	}

	employee := domain.Employee{}
	employee.ID = id
	if _, err := s.employeeRepo.Delete(ctx, &employee); err != nil {
		return err
	}

	s.publish(ctx, id)
	return nil
}

func (s *EmployeeService) publish(ctx context.Context, employeeID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.NewEmployeeChangedEvent(employeeID)); err != nil {
		s.logger.Warn("failed to publish employee change", zap.Int64("employee_id", employeeID), zap.Error(err))
	}
}
