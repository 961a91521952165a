package cache

import (
	"time"

	"github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// ClientCache is the read-through cache over the client table
type ClientCache struct {
	*EntityCache[ledger.Client]
}

// NewClientCache creates the client cache and, when a bus is provided,
// subscribes it to client change events for invalidation.
func NewClientCache(repo *persistence.Repository[ledger.Client], staleness time.Duration, bus shared.EventSubscriber, logger *zap.Logger) *ClientCache {
	c := &ClientCache{
		EntityCache: NewEntityCache("clients", repo.FindAll, staleness, logger),
	}
	if bus != nil {
		bus.Subscribe(NewInvalidationHandler(c.Invalidate, ledger.EventClientChanged))
	}
	return c
}
