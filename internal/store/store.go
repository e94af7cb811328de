// Package store defines the persistence contract shared by every entity
// service: single-key CRUD, indexed equality queries and full scans over a
// set of registered collections. Implementations live in the memory, redis
// and postgres subpackages and are interchangeable.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrAlreadyExists is returned by PutItemIfAbsent when the key is taken.
var ErrAlreadyExists = errors.New("item already exists")

// ErrUnknownCollection is returned for collections not registered at construction.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrUnknownIndex is returned for index names the collection does not declare.
var ErrUnknownIndex = errors.New("unknown index")

// TimeLayout is the canonical wire format for timestamps stored inside
// items. It is fixed-width UTC so that lexicographic order equals
// chronological order, which backends rely on when sorting query results.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout timestamp. The zero time is returned for
// malformed values; callers treat timestamps as advisory display data.
func ParseTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Key identifies a single item within a collection. Sort is empty for
// collections keyed by partition alone.
type Key struct {
	Partition string
	Sort      string
}

// Canonical returns the flattened representation used by backends that
// need a single map or storage key per item.
func (k Key) Canonical() string {
	if k.Sort == "" {
		return k.Partition
	}
	return k.Partition + "\x1f" + k.Sort
}

// Item is a single stored record. Values are restricted to JSON-compatible
// scalars (string, bool, float64) so that every backend round-trips them
// identically.
type Item map[string]any

// Clone returns a shallow copy, protecting callers from aliasing the
// backend's internal state.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// String returns the named field as a string, or "" when absent or of
// another type.
func (i Item) String(field string) string {
	s, _ := i[field].(string)
	return s
}

// Bool returns the named field as a bool, false when absent.
func (i Item) Bool(field string) bool {
	b, _ := i[field].(bool)
	return b
}

// Index declares a queryable equality index over a single item field.
type Index struct {
	Name  string
	Field string
}

// Schema describes one collection: how items are keyed, which field orders
// query results and which fields are indexed.
type Schema struct {
	Name         string
	PartitionKey string
	SortKey      string // empty for single-field keys
	SortField    string // field ordering QueryByIndex results; empty means key order
	Indexes      []Index
}

// KeyOf extracts the item's key according to the schema.
func (s *Schema) KeyOf(it Item) Key {
	k := Key{Partition: it.String(s.PartitionKey)}
	if s.SortKey != "" {
		k.Sort = it.String(s.SortKey)
	}
	return k
}

// Index returns the named index declaration.
func (s *Schema) Index(name string) (Index, bool) {
	for _, ix := range s.Indexes {
		if ix.Name == name {
			return ix, true
		}
	}
	return Index{}, false
}

// Store is the adapter every entity service persists through. All
// operations are single-key or single-index; there are no multi-item
// transactions. Implementations must be safe for concurrent use.
type Store interface {
	// GetItem returns the item stored under key, or ErrNotFound.
	GetItem(ctx context.Context, collection string, key Key) (Item, error)

	// PutItem unconditionally writes the item (insert or replace).
	PutItem(ctx context.Context, collection string, item Item) error

	// PutItemIfAbsent writes the item only when its key is free,
	// returning ErrAlreadyExists otherwise. This is the conditional
	// write backing duplicate-profile and duplicate-like protection.
	PutItemIfAbsent(ctx context.Context, collection string, item Item) error

	// UpdateItem merges the given fields into the stored item and
	// returns the merged result, or ErrNotFound.
	UpdateItem(ctx context.Context, collection string, key Key, fields Item) (Item, error)

	// DeleteItem removes the item. Deleting an absent key is not an
	// error; the concurrent like-toggle flow depends on delete being
	// idempotent.
	DeleteItem(ctx context.Context, collection string, key Key) error

	// QueryByIndex returns every item whose indexed field equals value,
	// ordered by the collection's sort field.
	QueryByIndex(ctx context.Context, collection, index, value string, ascending bool) ([]Item, error)

	// Scan returns every item in the collection, in no particular order.
	Scan(ctx context.Context, collection string) ([]Item, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}
