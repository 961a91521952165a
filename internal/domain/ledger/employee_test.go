package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmployee(t *testing.T) {
	t.Run("requires a name", func(t *testing.T) {
		_, err := NewEmployee("  ", "555-0101", "")
		assert.Error(t, err)
	})

	t.Run("requires a phone", func(t *testing.T) {
		_, err := NewEmployee("Dana", "  ", "")
		assert.Error(t, err)
	})

	t.Run("starts with zero earnings", func(t *testing.T) {
		employee, err := NewEmployee("Dana", "555-0101", "")
		require.NoError(t, err)
		assert.True(t, employee.TotalEarnings.IsZero())
		assert.True(t, employee.PaidEarnings.IsZero())
		assert.True(t, employee.UnpaidEarnings().IsZero())
	})
}

func TestEmployeeEarnings(t *testing.T) {
	employee, err := NewEmployee("Dana", "555-0101", "")
	require.NoError(t, err)

	employee.AccrueEarnings(decimal.NewFromInt(400))
	employee.AccrueEarnings(decimal.NewFromInt(100))
	assert.True(t, employee.TotalEarnings.Equal(decimal.NewFromInt(500)))
	assert.True(t, employee.UnpaidEarnings().Equal(decimal.NewFromInt(500)))

	require.NoError(t, employee.RecordPayout(decimal.NewFromInt(300)))
	assert.True(t, employee.PaidEarnings.Equal(decimal.NewFromInt(300)))
	assert.True(t, employee.UnpaidEarnings().Equal(decimal.NewFromInt(200)))

	assert.Error(t, employee.RecordPayout(decimal.NewFromInt(-1)))
}
