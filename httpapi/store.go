package httpapi

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the persistence contract the handlers need: load and replace one
// resource by id.
type Store[T any] interface {
	Get(id uuid.UUID) (*T, bool)
	Put(id uuid.UUID, v *T)
}

// MemoryStore is a Store backed by an in-process map. The map is guarded by
// an RWMutex because handlers run concurrently; each filter-then-apply pass
// itself stays synchronous.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*T
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{items: make(map[uuid.UUID]*T)}
}

func (s *MemoryStore[T]) Get(id uuid.UUID) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[id]
	return v, ok
}

func (s *MemoryStore[T]) Put(id uuid.UUID, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = v
}
