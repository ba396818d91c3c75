package shared

import "context"

// Repository is the persistence gateway for one entity kind.
// FindByID, Update and Delete return ErrNotFound when no row matches;
// any other error is a *PersistenceError.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, id int64, attrs *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}
