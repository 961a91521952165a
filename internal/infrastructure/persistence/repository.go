package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Scope restricts or reshapes a query before it is materialized. Predicates
// (WHERE clauses) and modifiers (ordering, pagination) are both expressed as
// scopes and compose left to right.
type Scope func(*gorm.DB) *gorm.DB

// Where builds a predicate scope
func Where(query any, args ...any) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(query, args...)
	}
}

// OrderBy builds an ordering scope
func OrderBy(expr string) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(expr)
	}
}

// Paged builds a pagination scope
func Paged(skip, take int) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		if skip > 0 {
			tx = tx.Offset(skip)
		}
		if take > 0 {
			tx = tx.Limit(take)
		}
		return tx
	}
}

// Repository provides CRUD and filtered-query operations for any entity
// type. It owns the persisted representation; it holds no mutable state
// beyond the store handle, so one instance is safe for concurrent callers.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a repository over the shared store handle
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx returns a repository bound to an open transaction. Used by the
// transaction coordinator so a unit of work spans multiple repositories.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

// Insert persists a new entity, assigns its identity, and stamps CreatedAt
// when the type is Auditable.
func (r *Repository[T]) Insert(ctx context.Context, entity *T) (int64, error) {
	if a, ok := any(entity).(shared.Auditable); ok {
		a.TouchCreated(time.Now())
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return 0, translateError(fmt.Sprintf("insert %T", *entity), err)
	}
	if ident, ok := any(entity).(shared.Identifiable); ok {
		return ident.EntityID(), nil
	}
	return 0, nil
}

// Update persists changes to an existing entity and stamps UpdatedAt when
// the type is Auditable. Returns the number of rows affected; zero means
// no row matched the identity, which the caller decides how to treat.
func (r *Repository[T]) Update(ctx context.Context, entity *T) (int64, error) {
	ident, ok := any(entity).(shared.Identifiable)
	if !ok || ident.EntityID() == 0 {
		return 0, fmt.Errorf("update %T: entity has no identity: %w", *entity, shared.ErrInvalidInput)
	}
	if a, ok := any(entity).(shared.Auditable); ok {
		a.TouchUpdated(time.Now())
	}

	result := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit("id", "created_at").
		Where("id = ?", ident.EntityID()).
		Updates(entity)
	if result.Error != nil {
		return 0, translateError(fmt.Sprintf("update %T id=%d", *entity, ident.EntityID()), result.Error)
	}
	return result.RowsAffected, nil
}

// Save dispatches to Insert when the identity is zero, otherwise Update.
// This is the canonical upsert entry point used by the domain services.
func (r *Repository[T]) Save(ctx context.Context, entity *T) (int64, error) {
	ident, ok := any(entity).(shared.Identifiable)
	if !ok {
		return 0, fmt.Errorf("save %T: entity has no identity: %w", *entity, shared.ErrInvalidInput)
	}
	if ident.EntityID() == 0 {
		return r.Insert(ctx, entity)
	}
	if _, err := r.Update(ctx, entity); err != nil {
		return 0, err
	}
	return ident.EntityID(), nil
}

// Delete removes an entity by its identity and returns rows affected
func (r *Repository[T]) Delete(ctx context.Context, entity *T) (int64, error) {
	result := r.db.WithContext(ctx).Delete(entity)
	if result.Error != nil {
		return 0, translateError(fmt.Sprintf("delete %T", *entity), result.Error)
	}
	return result.RowsAffected, nil
}

// FindByID loads one entity by identity, ErrNotFound when absent
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(fmt.Sprintf("find %T id=%d", entity, id), err)
	}
	return &entity, nil
}

// FindAll loads the complete entity set, unordered
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.FindFiltered(ctx)
}

// FindFiltered loads entities matching the composed scopes. With no scopes
// it returns the unfiltered set.
func (r *Repository[T]) FindFiltered(ctx context.Context, scopes ...Scope) ([]T, error) {
	var entities []T
	query := r.applyScopes(r.db.WithContext(ctx), scopes)
	if err := query.Find(&entities).Error; err != nil {
		var zero T
		return nil, translateError(fmt.Sprintf("query %T", zero), err)
	}
	if entities == nil {
		entities = []T{}
	}
	return entities, nil
}

// Count counts entities matching the composed scopes
func (r *Repository[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var count int64
	query := r.applyScopes(r.db.WithContext(ctx).Model(new(T)), scopes)
	if err := query.Count(&count).Error; err != nil {
		var zero T
		return 0, translateError(fmt.Sprintf("count %T", zero), err)
	}
	return count, nil
}

func (r *Repository[T]) applyScopes(query *gorm.DB, scopes []Scope) *gorm.DB {
	for _, scope := range scopes {
		if scope != nil {
			query = scope(query)
		}
	}
	return query
}
