package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domainrepo "whatsapp-channel/internal/domain/interfaces/repository"
)

// MemoryRepository keeps documents in process memory. It backs the stores
// when no MongoDB URI is configured, and in tests.
type MemoryRepository[T any] struct {
	mu   sync.RWMutex
	docs map[string]map[string]T
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{docs: make(map[string]map[string]T)}
}

func (r *MemoryRepository[T]) Create(ctx context.Context, collectionName string, id string, entity T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection := r.collection(collectionName)
	if _, exists := collection[id]; exists {
		var zero T
		return zero, fmt.Errorf("duplicate key %q in %s", id, collectionName)
	}
	collection[id] = entity
	return entity, nil
}

func (r *MemoryRepository[T]) Upsert(ctx context.Context, collectionName string, id string, entity T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collection(collectionName)[id] = entity
	return entity, nil
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, collectionName string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.collection(collectionName), id)
	return nil
}

func (r *MemoryRepository[T]) FindByID(ctx context.Context, collectionName string, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.docs[collectionName][id]
	if !ok {
		return entity, domainrepo.ErrNotFound
	}
	return entity, nil
}

// FindAll returns documents ordered by id.
func (r *MemoryRepository[T]) FindAll(ctx context.Context, collectionName string) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collection := r.docs[collectionName]
	ids := make([]string, 0, len(collection))
	for id := range collection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entities := make([]T, 0, len(ids))
	for _, id := range ids {
		entities = append(entities, collection[id])
	}
	return entities, nil
}

func (r *MemoryRepository[T]) collection(name string) map[string]T {
	c, ok := r.docs[name]
	if !ok {
		c = make(map[string]T)
		r.docs[name] = c
	}
	return c
}
