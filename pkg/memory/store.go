// Package memory is the agent's scratch memory for Remember and Recall:
// a key/value store kept in process or in a SQLite file.
package memory

import (
	"context"
	"sort"
	"sync"
)

// Store is a string key/value store.
type Store interface {
	// Put sets key to value, replacing any previous value.
	Put(ctx context.Context, key, value string) error
	// Get returns the value for key; ok is false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Keys returns all keys, sorted.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// MapStore is an in-process Store. Its contents die with the process.
type MapStore struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ Store = (*MapStore)(nil)

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{m: make(map[string]string)}
}

// Put implements Store.
func (s *MapStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// Get implements Store.
func (s *MapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Keys implements Store.
func (s *MapStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (s *MapStore) Close() error { return nil }
