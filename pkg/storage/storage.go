package storage

import (
	"context"
	"sync"

	pkgerrors "github.com/fedprompt/fedprompt/pkg/errors"
)

type Storage interface {
	Create(ctx context.Context, id string, value any) error
	Get(ctx context.Context, id string) (any, error)
	Update(ctx context.Context, id string, value any) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit uint64) ([]any, uint64, error)
}

type inMemory struct {
	mu    sync.RWMutex
	data  map[string]any
	order []string
}

func NewInMemoryStorage() Storage {
	return &inMemory{
		data: make(map[string]any),
	}
}

func (s *inMemory) Create(ctx context.Context, id string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; ok {
		return pkgerrors.ErrEntityExists
	}

	s.data[id] = value
	s.order = append(s.order, id)

	return nil
}

func (s *inMemory) Get(ctx context.Context, id string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}

	return value, nil
}

func (s *inMemory) Update(ctx context.Context, id string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return pkgerrors.ErrNotFound
	}

	s.data[id] = value

	return nil
}

func (s *inMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return pkgerrors.ErrNotFound
	}

	delete(s.data, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

// List returns entries in insertion order so round history reads back
// in the order rounds were executed.
func (s *inMemory) List(ctx context.Context, offset, limit uint64) ([]any, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := uint64(len(s.order))
	if offset >= total {
		return []any{}, total, nil
	}

	end := offset + limit
	if limit == 0 || end > total {
		end = total
	}

	values := make([]any, 0, end-offset)
	for _, key := range s.order[offset:end] {
		values = append(values, s.data[key])
	}

	return values, total, nil
}
