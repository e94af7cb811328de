// Package memory implements store.Store with mutex-guarded maps. It is
// the default backend for local development and the one every service
// test runs against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/korero-app/korero-backend/internal/store"
)

// Store is an in-memory store.Store implementation.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]*store.Schema
	tables  map[string]map[string]store.Item // collection -> canonical key -> item
}

// New creates a memory store over the given collection schemas.
func New(schemas ...*store.Schema) *Store {
	s := &Store{
		schemas: make(map[string]*store.Schema, len(schemas)),
		tables:  make(map[string]map[string]store.Item, len(schemas)),
	}
	for _, sc := range schemas {
		s.schemas[sc.Name] = sc
		s.tables[sc.Name] = make(map[string]store.Item)
	}
	return s
}

func (s *Store) schema(collection string) (*store.Schema, error) {
	sc, ok := s.schemas[collection]
	if !ok {
		return nil, store.ErrUnknownCollection
	}
	return sc, nil
}

func (s *Store) GetItem(ctx context.Context, collection string, key store.Key) (store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.tables[collection][key.Canonical()]
	if !ok {
		return nil, store.ErrNotFound
	}
	return it.Clone(), nil
}

func (s *Store) PutItem(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[collection][sc.KeyOf(item).Canonical()] = item.Clone()
	return nil
}

func (s *Store) PutItemIfAbsent(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := sc.KeyOf(item).Canonical()
	if _, exists := s.tables[collection][k]; exists {
		return store.ErrAlreadyExists
	}
	s.tables[collection][k] = item.Clone()
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, collection string, key store.Key, fields store.Item) (store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.tables[collection][key.Canonical()]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range fields {
		it[k] = v
	}
	return it.Clone(), nil
}

func (s *Store) DeleteItem(ctx context.Context, collection string, key store.Key) error {
	if _, err := s.schema(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables[collection], key.Canonical())
	return nil
}

func (s *Store) QueryByIndex(ctx context.Context, collection, index, value string, ascending bool) ([]store.Item, error) {
	sc, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	ix, ok := sc.Index(index)
	if !ok {
		return nil, store.ErrUnknownIndex
	}

	s.mu.RLock()
	var out []store.Item
	for _, it := range s.tables[collection] {
		if it.String(ix.Field) == value {
			out = append(out, it.Clone())
		}
	}
	s.mu.RUnlock()

	sortItems(out, sc, ascending)
	return out, nil
}

func (s *Store) Scan(ctx context.Context, collection string) ([]store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Item, 0, len(s.tables[collection]))
	for _, it := range s.tables[collection] {
		out = append(out, it.Clone())
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// sortItems orders query results by the schema's sort field, falling back
// to key order for collections without one. Timestamps use the
// fixed-width store.TimeLayout, so plain string comparison is
// chronological.
func sortItems(items []store.Item, sc *store.Schema, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := sortValue(items[i], sc), sortValue(items[j], sc)
		if ascending {
			return a < b
		}
		return a > b
	})
}

func sortValue(it store.Item, sc *store.Schema) string {
	if sc.SortField != "" {
		return it.String(sc.SortField)
	}
	return sc.KeyOf(it).Canonical()
}
