package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	domain "github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/infrastructure/cache"
	"github.com/workledger/backend/internal/infrastructure/event"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixture wires the full service stack over a private in-memory store
type fixture struct {
	db            *persistence.Database
	clientRepo    *persistence.Repository[domain.Client]
	employeeRepo  *persistence.Repository[domain.Employee]
	jobRepo       *persistence.Repository[domain.Job]
	recordRepo    *persistence.Repository[domain.WorkRecord]
	assocRepo     *persistence.Repository[domain.EmployeeWorkRecord]
	paymentRepo   *persistence.Repository[domain.EmployeePayment]
	bus           *event.InMemoryEventBus
	clientCache   *cache.ClientCache
	employeeCache *cache.EmployeeCache
	clients       *ClientService
	employees     *EmployeeService
	records       *WorkRecordService
	reports       *ReportService
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &persistence.Database{DB: gdb}
	t.Cleanup(func() { _ = db.Close() })

	log := zap.NewNop()
	require.NoError(t, persistence.NewSchemaManager(db, log).Initialize(context.Background()))

	f := &fixture{
		db:           db,
		clientRepo:   persistence.NewRepository[domain.Client](gdb),
		employeeRepo: persistence.NewRepository[domain.Employee](gdb),
		jobRepo:      persistence.NewRepository[domain.Job](gdb),
		recordRepo:   persistence.NewRepository[domain.WorkRecord](gdb),
		assocRepo:    persistence.NewRepository[domain.EmployeeWorkRecord](gdb),
		paymentRepo:  persistence.NewRepository[domain.EmployeePayment](gdb),
	}
	f.bus = event.NewInMemoryEventBus(log)
	f.clientCache = cache.NewClientCache(f.clientRepo, time.Minute, f.bus, log)
	f.employeeCache = cache.NewEmployeeCache(f.employeeRepo, time.Minute, f.bus, log)

	f.clients = NewClientService(db, f.clientRepo, f.jobRepo, f.bus, log)
	f.employees = NewEmployeeService(f.employeeRepo, f.bus, log)
	f.records = NewWorkRecordService(db, f.recordRepo, f.jobRepo, f.assocRepo, f.paymentRepo, f.employeeRepo, f.bus, log)
	f.reports = NewReportService(f.recordRepo, f.assocRepo, f.clientCache, f.employeeCache, log)

	return f
}

// seedClientWithJob creates a client with one job and returns both
func (f *fixture) seedClientWithJob(t *testing.T, unitPrice string) (*ClientResponse, JobResponse) {
	t.Helper()
	ctx := context.Background()

	client, err := f.clients.SaveClientWithJobs(ctx,
		SaveClientRequest{Name: "Acme Tailoring", Phone: "555-0101", Address: "12 High St"},
		[]JobInput{{Name: "Hem trousers", UnitPrice: decimal.RequireFromString(unitPrice), UnitLabel: "piece"}},
	)
	require.NoError(t, err)
	require.Len(t, client.Jobs, 1)
	return &client.ClientResponse, client.Jobs[0]
}

// seedEmployee creates one employee
func (f *fixture) seedEmployee(t *testing.T, name, phone string) *EmployeeResponse {
	t.Helper()
	employee, err := f.employees.SaveEmployee(context.Background(),
		SaveEmployeeRequest{Name: name, Phone: phone})
	require.NoError(t, err)
	return employee
}
