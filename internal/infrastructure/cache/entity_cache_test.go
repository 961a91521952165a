package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// countingLoader serves a fixed employee set and counts invocations
type countingLoader struct {
	employees []ledger.Employee
	calls     int
	err       error
}

func (l *countingLoader) load(ctx context.Context) ([]ledger.Employee, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.employees, nil
}

func employeeFixture(id int64, name string) ledger.Employee {
	e := ledger.Employee{Name: name, Phone: name}
	e.ID = id
	return e
}

func newTestCache(loader *countingLoader, staleness time.Duration) *EntityCache[ledger.Employee] {
	return NewEntityCache("employees", loader.load, staleness, zap.NewNop())
}

func TestEntityCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads then hit serves from memory", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Minute)

		got, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got.Name)
		assert.Equal(t, 1, loader.calls)

		_, err = c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls, "second read must not reload")

		stats := c.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.Equal(t, int64(1), stats.Refreshes)
	})

	t.Run("absent id refreshes once then reports not found", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Minute)

		_, err := c.Get(ctx, 99)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 1, loader.calls)
	})

	t.Run("loader failure propagates", func(t *testing.T) {
		loader := &countingLoader{err: errors.New("store down")}
		c := newTestCache(loader, time.Minute)

		_, err := c.Get(ctx, 1)
		assert.Error(t, err)
	})
}

func TestEntityCacheGetMany(t *testing.T) {
	ctx := context.Background()

	t.Run("one refresh per batch", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{
			employeeFixture(1, "Dana"),
			employeeFixture(2, "Alex"),
			employeeFixture(3, "Morgan"),
		}}
		c := newTestCache(loader, time.Minute)

		got, err := c.GetMany(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, 1, loader.calls, "three misses share one refresh")
	})

	t.Run("unresolved ids are dropped silently", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Minute)

		got, err := c.GetMany(ctx, []int64{1, 404})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("fully warm batch counts hits and skips the loader", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{
			employeeFixture(1, "Dana"),
			employeeFixture(2, "Alex"),
		}}
		c := newTestCache(loader, time.Minute)
		require.NoError(t, c.Refresh(ctx))

		_, err := c.GetMany(ctx, []int64{1, 2})
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls)
		assert.Equal(t, int64(2), c.Stats().Hits)
	})
}

func TestEntityCacheGetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes when empty", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Minute)

		all, err := c.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.Equal(t, 1, loader.calls)
	})

	t.Run("serves the snapshot inside the staleness window", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Hour)
		require.NoError(t, c.Refresh(ctx))

		_, err := c.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls)
	})

	t.Run("refreshes once the snapshot goes stale", func(t *testing.T) {
		loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
		c := newTestCache(loader, time.Nanosecond)
		require.NoError(t, c.Refresh(ctx))

		time.Sleep(2 * time.Nanosecond)
		_, err := c.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, loader.calls)
	})
}

func TestEntityCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{employees: []ledger.Employee{employeeFixture(1, "Dana")}}
	c := newTestCache(loader, time.Hour)
	require.NoError(t, c.Refresh(ctx))

	c.Invalidate()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.True(t, stats.LastRefresh.IsZero())

	_, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls, "invalidated snapshot reloads on next read")
}

func TestCacheInvalidationViaBus(t *testing.T) {
	ctx := context.Background()
	invalidations := 0
	handler := NewInvalidationHandler(func() { invalidations++ }, ledger.EventEmployeeChanged)

	require.NoError(t, handler.Handle(ctx, ledger.NewEmployeeChangedEvent(7)))
	assert.Equal(t, 1, invalidations)
	assert.Equal(t, []string{ledger.EventEmployeeChanged}, handler.EventTypes())
}
