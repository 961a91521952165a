package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// constraintMessages maps substrings of driver constraint errors to
// caller-facing messages. SQLite reports violations as
// "UNIQUE constraint failed: <table>.<column>, ...", so matching on the
// table/column fragment is stable across driver versions.
var constraintMessages = []struct {
	fragment string
	message  string
}{
	{"clients.", "A client with the same name, phone and address already exists"},
	{"idx_clients_identity", "A client with the same name, phone and address already exists"},
	{"employees.phone", "An employee with this phone number already exists"},
	{"idx_employees_phone", "An employee with this phone number already exists"},
	{"employee_work_records", "This employee is already assigned to the work record"},
}

// translateError converts store-level failures into the domain taxonomy.
// Unique and foreign key violations become ErrConstraintViolation with a
// constraint-specific message; everything else is wrapped as
// ErrOperationFailed with the operation name preserved for logging.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if isConstraintError(err) {
		return fmt.Errorf("%s: %s: %w", op, constraintMessage(err), shared.ErrConstraintViolation)
	}
	return fmt.Errorf("%s: %v: %w", op, err, shared.ErrOperationFailed)
}

// isConstraintError reports whether err is a unique or foreign key
// violation. Other constraint classes (NOT NULL, CHECK) signal a programming
// error, not a duplicate, and stay in the generic failure bucket.
func isConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	text := err.Error()
	return strings.Contains(text, "UNIQUE constraint failed") ||
		strings.Contains(text, "FOREIGN KEY constraint failed")
}

// constraintMessage derives a friendly message from the driver error text
func constraintMessage(err error) string {
	text := err.Error()
	for _, cm := range constraintMessages {
		if strings.Contains(text, cm.fragment) {
			return cm.message
		}
	}
	return "A uniqueness or reference constraint was violated"
}
