package cache

import (
	"time"

	"github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// EmployeeCache is the read-through cache over the employee table
type EmployeeCache struct {
	*EntityCache[ledger.Employee]
}

// NewEmployeeCache creates the employee cache and, when a bus is provided,
// subscribes it to employee change events for invalidation.
func NewEmployeeCache(repo *persistence.Repository[ledger.Employee], staleness time.Duration, bus shared.EventSubscriber, logger *zap.Logger) *EmployeeCache {
	c := &EmployeeCache{
		EntityCache: NewEntityCache("employees", repo.FindAll, staleness, logger),
	}
	if bus != nil {
		bus.Subscribe(NewInvalidationHandler(c.Invalidate, ledger.EventEmployeeChanged))
	}
	return c
}
