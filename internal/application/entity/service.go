// Package entity holds the mutation pipeline shared by every entity kind:
// persist first, then fan the change out, and never fan out a failed mutation.
package entity

import (
	"context"

	"github.com/fieldops/backend/internal/domain/shared"
)

// Service runs CRUD operations for one entity kind
type Service[T any] struct {
	kind     shared.Kind
	repo     shared.Repository[T]
	notifier shared.Notifier
}

// NewService creates a service. notifier may be nil, in which case no change events are emitted.
func NewService[T any](kind shared.Kind, repo shared.Repository[T], notifier shared.Notifier) *Service[T] {
	return &Service[T]{kind: kind, repo: repo, notifier: notifier}
}

// Kind returns the kind this service manages
func (s *Service[T]) Kind() shared.Kind {
	return s.kind
}

// Create stores entity and announces it
func (s *Service[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}
	s.notify(ctx, shared.OperationCreate, *entity)
	return entity, nil
}

// List returns every entity of the kind
func (s *Service[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.FindAll(ctx)
}

// Get returns entity id or shared.ErrNotFound
func (s *Service[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces the mutable attributes of entity id and announces the stored result
func (s *Service[T]) Update(ctx context.Context, id int64, attrs *T) (*T, error) {
	updated, err := s.repo.Update(ctx, id, attrs)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, shared.OperationUpdate, *updated)
	return updated, nil
}

// Delete removes entity id and announces its identifier
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, shared.OperationDelete, shared.DeletedRef{ID: id})
	return nil
}

func (s *Service[T]) notify(ctx context.Context, op shared.Operation, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, s.kind, op, payload)
}
