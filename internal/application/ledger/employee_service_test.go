package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/backend/internal/domain/shared"
)

func TestEmployeeServiceSaveEmployee(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an employee", func(t *testing.T) {
		f := setupFixture(t)
		employee := f.seedEmployee(t, "Dana", "555-0101")
		assert.Greater(t, employee.ID, int64(0))
		assert.True(t, employee.TotalEarnings.IsZero())
	})

	t.Run("rejects a duplicate phone", func(t *testing.T) {
		f := setupFixture(t)
		f.seedEmployee(t, "Dana", "555-0101")

		_, err := f.employees.SaveEmployee(ctx, SaveEmployeeRequest{Name: "Alex", Phone: "555-0101"})
		assert.Error(t, err)
	})

	t.Run("profile edits preserve accumulated earnings", func(t *testing.T) {
		f := setupFixture(t)
		employee := f.seedEmployee(t, "Dana", "555-0101")

		loaded, err := f.employeeRepo.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		loaded.AccrueEarnings(decimal.NewFromInt(500))
		_, err = f.employeeRepo.Update(ctx, loaded)
		require.NoError(t, err)

		updated, err := f.employees.SaveEmployee(ctx, SaveEmployeeRequest{
			ID: employee.ID, Name: "Dana Q", Phone: "555-0101",
		})
		require.NoError(t, err)
		assert.Equal(t, "Dana Q", updated.Name)
		assert.True(t, updated.TotalEarnings.Equal(decimal.NewFromInt(500)))
	})

	t.Run("requires a phone", func(t *testing.T) {
		f := setupFixture(t)
		_, err := f.employees.SaveEmployee(ctx, SaveEmployeeRequest{Name: "Dana"})
		assert.Error(t, err)
	})
}

func TestEmployeeServiceGetEmployeesPaged(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.seedEmployee(t, "Morgan", "555-0103")
	f.seedEmployee(t, "Alex", "555-0102")
	f.seedEmployee(t, "Dana", "555-0101")

	page, err := f.employees.GetEmployeesPaged(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alex", page.Items[0].Name)
	assert.Equal(t, "Dana", page.Items[1].Name)
}

func TestEmployeeServiceDeleteEmployee(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	employee := f.seedEmployee(t, "Dana", "555-0101")
	require.NoError(t, f.employees.DeleteEmployee(ctx, employee.ID))

	_, err := f.employees.GetEmployee(ctx, employee.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
