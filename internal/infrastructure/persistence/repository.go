package persistence

import (
	"context"
	"errors"

	"github.com/fieldops/backend/internal/domain/fieldops"
	"github.com/fieldops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// immutableColumns are never overwritten by Update
var immutableColumns = []string{"id", "created_at"}

// GormRepository implements shared.Repository for one entity kind using GORM.
// T must embed shared.BaseEntity.
type GormRepository[T any] struct {
	db   *gorm.DB
	kind string
}

// NewGormRepository creates a repository for records of type T.
// kind is only used to label persistence errors.
func NewGormRepository[T any](db *gorm.DB, kind string) *GormRepository[T] {
	return &GormRepository[T]{db: db, kind: kind}
}

// Create inserts entity and fills it with the stored row (id and timestamps included)
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(entity).Error; err != nil {
		return shared.NewPersistenceError("create", r.kind, err)
	}
	return nil
}

// FindAll returns every row in store order
func (r *GormRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	entities := make([]T, 0)
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, shared.NewPersistenceError("list", r.kind, err)
	}
	return entities, nil
}

// FindByID finds a row by its ID
func (r *GormRepository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.NewPersistenceError("get", r.kind, err)
	}
	return &entity, nil
}

// Update overwrites every mutable column of row id with attrs, including zero
// values, bumps updated_at and returns the row as stored afterwards. The write
// and the read-back share one transaction, so the returned row is this update's
// result even when another update of the same row races it.
func (r *GormRepository[T]) Update(ctx context.Context, id int64, attrs *T) (*T, error) {
	var updated T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(new(T)).
			Where("id = ?", id).
			Select("*").
			Omit(immutableColumns...).
			Updates(attrs)
		if result.Error != nil {
			return shared.NewPersistenceError("update", r.kind, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			return shared.NewPersistenceError("update", r.kind, err)
		}
		return nil
	})
	if err != nil {
		if shared.IsNotFound(err) || shared.IsPersistence(err) {
			return nil, err
		}
		// begin or commit failed
		return nil, shared.NewPersistenceError("update", r.kind, err)
	}
	return &updated, nil
}

// Delete removes row id
func (r *GormRepository[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return shared.NewPersistenceError("delete", r.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormRepository implements Repository
var _ shared.Repository[fieldops.Job] = (*GormRepository[fieldops.Job])(nil)
