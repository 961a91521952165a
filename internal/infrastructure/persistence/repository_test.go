package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

func TestRepositorySave(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[ledger.Client](db.DB)
	ctx := context.Background()

	t.Run("insert assigns an identity and stamps created_at", func(t *testing.T) {
		client, err := ledger.NewClient("Acme", "555-0101", "12 High St")
		require.NoError(t, err)

		id, err := repo.Save(ctx, client)
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
		assert.Equal(t, id, client.ID)
		assert.False(t, client.CreatedAt.IsZero())
	})

	t.Run("save with identity updates in place", func(t *testing.T) {
		client, err := ledger.NewClient("Beta Works", "555-0102", "")
		require.NoError(t, err)
		id, err := repo.Save(ctx, client)
		require.NoError(t, err)

		client.Phone = "555-0199"
		savedID, err := repo.Save(ctx, client)
		require.NoError(t, err)
		assert.Equal(t, id, savedID)

		reloaded, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "555-0199", reloaded.Phone)
		assert.False(t, reloaded.UpdatedAt.IsZero())
	})

	t.Run("update without identity is rejected", func(t *testing.T) {
		client, err := ledger.NewClient("Gamma", "555-0103", "")
		require.NoError(t, err)

		_, err = repo.Update(ctx, client)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("update of a missing row affects zero rows without error", func(t *testing.T) {
		client, err := ledger.NewClient("Ghost", "555-0104", "")
		require.NoError(t, err)
		client.ID = 99999

		rows, err := repo.Update(ctx, client)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

func TestRepositoryFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[ledger.Employee](db.DB)
	ctx := context.Background()

	names := []string{"Dana", "Alex", "Morgan"}
	for i, name := range names {
		employee, err := ledger.NewEmployee(name, fmt.Sprintf("555-020%d", i), "")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, employee)
		require.NoError(t, err)
	}

	t.Run("find by id returns ErrNotFound when absent", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 42424242)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find all returns every row", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("filtered query with predicate ordering and paging", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx,
			Where("name <> ?", "Morgan"),
			OrderBy("name asc"),
			Paged(0, 1),
		)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Alex", page[0].Name)
	})

	t.Run("nil scopes are skipped", func(t *testing.T) {
		all, err := repo.FindFiltered(ctx, nil, OrderBy("name desc"), nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("no matches yields an empty non-nil slice", func(t *testing.T) {
		none, err := repo.FindFiltered(ctx, Where("name = ?", "Nobody"))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("count honors scopes", func(t *testing.T) {
		count, err := repo.Count(ctx, Where("name <> ?", "Morgan"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[ledger.Job](db.DB)
	ctx := context.Background()

	job, err := ledger.NewJob(1, "Hem trousers", decimal.RequireFromString("2.50"), "piece")
	require.NoError(t, err)
	id, err := repo.Insert(ctx, job)
	require.NoError(t, err)

	rows, err := repo.Delete(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRepositoryUniqueConstraints(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("duplicate employee phone is a constraint violation", func(t *testing.T) {
		repo := NewRepository[ledger.Employee](db.DB)

		first, err := ledger.NewEmployee("Dana", "555-0300", "")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, first)
		require.NoError(t, err)

		second, err := ledger.NewEmployee("Alex", "555-0300", "")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConstraintViolation)
	})

	t.Run("client identity is unique case-insensitively", func(t *testing.T) {
		repo := NewRepository[ledger.Client](db.DB)

		first, err := ledger.NewClient("Acme", "555-0400", "12 High St")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, first)
		require.NoError(t, err)

		second, err := ledger.NewClient("ACME", "555-0400", "12 HIGH ST")
		require.NoError(t, err)
		_, err = repo.Insert(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConstraintViolation)
	})

	t.Run("duplicate assignment pair is a constraint violation", func(t *testing.T) {
		repo := NewRepository[ledger.EmployeeWorkRecord](db.DB)

		first := &ledger.EmployeeWorkRecord{EmployeeID: 1, WorkRecordID: 2}
		_, err := repo.Insert(ctx, first)
		require.NoError(t, err)

		second := &ledger.EmployeeWorkRecord{EmployeeID: 1, WorkRecordID: 2}
		_, err = repo.Insert(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConstraintViolation)
	})
}

func TestTransactionRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[ledger.Client](db.DB)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		client, err := ledger.NewClient("Rolled Back", "555-0500", "")
		if err != nil {
			return err
		}
		if _, err := repo.WithTx(tx).Insert(ctx, client); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "rolled back insert must not be visible")
}

func TestInTransaction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[ledger.Client](db.DB)
	ctx := context.Background()

	id, err := InTransaction(ctx, db, func(tx *gorm.DB) (int64, error) {
		client, err := ledger.NewClient("Committed", "555-0501", "")
		if err != nil {
			return 0, err
		}
		return repo.WithTx(tx).Insert(ctx, client)
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = repo.FindByID(ctx, id)
	assert.NoError(t, err)
}
