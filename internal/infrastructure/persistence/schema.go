package persistence

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tableSpec declares one required table: the model that defines it, the
// logical name used for catalog probing, substrings that a fallback match
// must not contain, and the index DDL rendered against the resolved
// physical name.
type tableSpec struct {
	model    any
	logical  string
	excluded []string
	indexes  func(table string) []string
}

// ledgerTables enumerates every table the ledger requires. Probe exclusions
// keep the substring fallback from matching sibling tables: "employees"
// must not resolve to "employee_work_records" or "employee_payments", and
// "work_records" must not resolve to "employee_work_records".
var ledgerTables = []tableSpec{
	{
		model:   &ledger.Client{},
		logical: "clients",
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_identity ON %q (lower(name), lower(phone), lower(address))", table),
			}
		},
	},
	{
		model:    &ledger.Employee{},
		logical:  "employees",
		excluded: []string{"work_record", "payment"},
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_phone ON %q (phone)", table),
			}
		},
	},
	{
		model:   &ledger.Job{},
		logical: "jobs",
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_jobs_client ON %q (client_id)", table),
			}
		},
	},
	{
		model:    &ledger.WorkRecord{},
		logical:  "work_records",
		excluded: []string{"employee"},
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_work_records_client ON %q (client_id)", table),
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_work_records_job ON %q (job_id)", table),
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_work_records_date ON %q (work_date)", table),
			}
		},
	},
	{
		model:   &ledger.EmployeeWorkRecord{},
		logical: "employee_work_records",
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_employee_work_records_pair ON %q (employee_id, work_record_id)", table),
			}
		},
	},
	{
		model:   &ledger.EmployeePayment{},
		logical: "employee_payments",
		indexes: func(table string) []string {
			return []string{
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_employee_payments_employee ON %q (employee_id)", table),
				fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_employee_payments_record ON %q (work_record_id)", table),
			}
		},
	},
}

// SchemaManager makes the required tables and indexes exist exactly once
// per store lifetime. Initialization is single-flight: the first caller
// does the work, concurrent callers wait on the same mutex and observe the
// initialized flag.
type SchemaManager struct {
	db     *gorm.DB
	logger *zap.Logger

	mu          sync.Mutex
	initialized bool
}

// NewSchemaManager creates a schema manager over the store handle
func NewSchemaManager(db *Database, logger *zap.Logger) *SchemaManager {
	return &SchemaManager{db: db.DB, logger: logger.Named("schema")}
}

// Initialize creates all required tables and indexes idempotently. Table
// failures abort with ErrSchemaInitialization; index failures are logged
// and swallowed because indexes are an optimization, not a correctness
// requirement.
func (m *SchemaManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}
	if err := m.bootstrap(ctx); err != nil {
		return err
	}
	m.initialized = true
	return nil
}

// Reset drops every table in the store catalog, clears the initialized
// flag, and re-runs the full bootstrap.
func (m *SchemaManager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	migrator := m.db.WithContext(ctx).Migrator()
	tables, err := migrator.GetTables()
	if err != nil {
		return fmt.Errorf("reset: listing tables: %v: %w", err, shared.ErrSchemaInitialization)
	}
	for _, table := range tables {
		// SQLite keeps bookkeeping tables (sqlite_sequence for autoincrement
		// counters) in the same catalog; they cannot be dropped.
		if strings.HasPrefix(strings.ToLower(table), "sqlite_") {
			continue
		}
		m.logger.Info("dropping table", zap.String("table", table))
		if err := migrator.DropTable(table); err != nil {
			return fmt.Errorf("reset: dropping %s: %v: %w", table, err, shared.ErrSchemaInitialization)
		}
	}

	m.initialized = false
	if err := m.bootstrap(ctx); err != nil {
		return err
	}
	m.initialized = true
	return nil
}

// bootstrap runs table creation, name resolution, and index creation.
// Callers must hold the mutex.
func (m *SchemaManager) bootstrap(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	for _, spec := range ledgerTables {
		if err := db.AutoMigrate(spec.model); err != nil {
			return fmt.Errorf("creating table for %s: %v: %w", spec.logical, err, shared.ErrSchemaInitialization)
		}
	}

	// Re-read the catalog once after all creations, then verify each table
	// is really there under some recognizable name.
	catalog, err := db.Migrator().GetTables()
	if err != nil {
		return fmt.Errorf("listing tables: %v: %w", err, shared.ErrSchemaInitialization)
	}

	for _, spec := range ledgerTables {
		table, ok := resolveTableName(catalog, spec.logical, spec.excluded)
		if !ok {
			return fmt.Errorf("table for %s not found in store catalog %v: %w",
				spec.logical, catalog, shared.ErrSchemaInitialization)
		}
		if table != spec.logical {
			m.logger.Info("resolved table under drifted name",
				zap.String("logical", spec.logical),
				zap.String("physical", table))
		}
		for _, stmt := range spec.indexes(table) {
			if err := db.Exec(stmt).Error; err != nil {
				// Best effort: a failed index must not abort the others or
				// the overall initialization.
				m.logger.Warn("index creation failed",
					zap.String("table", table),
					zap.String("statement", stmt),
					zap.Error(err))
			}
		}
	}

	m.logger.Info("schema initialized", zap.Int("tables", len(ledgerTables)))
	return nil
}

// resolveTableName finds the physical table for a logical name under
// naming-convention uncertainty. Strategies in order: exact match, case
// variants, pluralized form, then a case-insensitive substring search over
// the catalog skipping any name containing an excluded fragment.
func resolveTableName(catalog []string, logical string, excluded []string) (string, bool) {
	present := make(map[string]string, len(catalog)) // lowercased -> actual
	for _, name := range catalog {
		present[strings.ToLower(name)] = name
	}

	candidates := []string{
		logical,
		strings.ToLower(logical),
		strings.ToUpper(logical),
		pluralize(logical),
	}
	for _, candidate := range candidates {
		if actual, ok := present[strings.ToLower(candidate)]; ok {
			return actual, true
		}
	}

	needle := strings.ToLower(singular(logical))
	for _, name := range catalog {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, needle) {
			continue
		}
		if containsAny(lower, excluded) {
			continue
		}
		return name, true
	}
	return "", false
}

// pluralize applies the naive English pluralization the store's naming
// convention might have used.
func pluralize(name string) string {
	switch {
	case strings.HasSuffix(name, "s"):
		return name
	case strings.HasSuffix(name, "y"):
		return name[:len(name)-1] + "ies"
	default:
		return name + "s"
	}
}

// singular strips a trailing plural suffix for substring probing
func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "s"):
		return name[:len(name)-1]
	default:
		return name
	}
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
