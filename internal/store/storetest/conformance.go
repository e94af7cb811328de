// Package storetest provides conformance tests shared by every
// store.Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/korero-app/korero-backend/internal/store"
)

// Factory creates a fresh Store registered with the given schemas.
type Factory func(t *testing.T, schemas ...*store.Schema) store.Store

// Schemas used throughout the suite: a single-key collection with an
// index, and a composite-key collection.
func widgetSchema() *store.Schema {
	return &store.Schema{
		Name:         "widgets",
		PartitionKey: "widget_id",
		SortField:    "created_at",
		Indexes:      []store.Index{{Name: "owner_id-index", Field: "owner_id"}},
	}
}

func noteSchema() *store.Schema {
	return &store.Schema{
		Name:         "notes",
		PartitionKey: "widget_id",
		SortKey:      "note_id",
		SortField:    "created_at",
		Indexes:      []store.Index{{Name: "widget_id-index", Field: "widget_id"}},
	}
}

// RunConformanceTests runs the full suite against a backend.
func RunConformanceTests(t *testing.T, factory Factory) {
	t.Run("GetPut", func(t *testing.T) {
		testGetPut(t, factory)
	})
	t.Run("PutIfAbsent", func(t *testing.T) {
		testPutIfAbsent(t, factory)
	})
	t.Run("Update", func(t *testing.T) {
		testUpdate(t, factory)
	})
	t.Run("Delete", func(t *testing.T) {
		testDelete(t, factory)
	})
	t.Run("CompositeKeys", func(t *testing.T) {
		testCompositeKeys(t, factory)
	})
	t.Run("QueryByIndex", func(t *testing.T) {
		testQueryByIndex(t, factory)
	})
	t.Run("Scan", func(t *testing.T) {
		testScan(t, factory)
	})
	t.Run("UnknownCollection", func(t *testing.T) {
		testUnknownCollection(t, factory)
	})
	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, factory)
	})
}

func widget(id, owner string, at time.Time) store.Item {
	return store.Item{
		"widget_id":  id,
		"owner_id":   owner,
		"label":      "widget " + id,
		"created_at": store.FormatTime(at),
	}
}

func testGetPut(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	item := widget("w1", "alice", time.Now())
	if err := s.PutItem(ctx, "widgets", item); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}

	got, err := s.GetItem(ctx, "widgets", store.Key{Partition: "w1"})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.String("owner_id") != "alice" || got.String("label") != "widget w1" {
		t.Fatalf("GetItem returned wrong item: %v", got)
	}

	// Replace
	item["label"] = "renamed"
	if err := s.PutItem(ctx, "widgets", item); err != nil {
		t.Fatalf("PutItem replace failed: %v", err)
	}
	got, err = s.GetItem(ctx, "widgets", store.Key{Partition: "w1"})
	if err != nil {
		t.Fatalf("GetItem after replace failed: %v", err)
	}
	if got.String("label") != "renamed" {
		t.Fatalf("Expected replaced label, got %q", got.String("label"))
	}

	_, err = s.GetItem(ctx, "widgets", store.Key{Partition: "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func testPutIfAbsent(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	item := widget("w1", "alice", time.Now())
	if err := s.PutItemIfAbsent(ctx, "widgets", item); err != nil {
		t.Fatalf("PutItemIfAbsent on free key failed: %v", err)
	}

	dup := widget("w1", "bob", time.Now())
	err := s.PutItemIfAbsent(ctx, "widgets", dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists, got %v", err)
	}

	// Loser's write must not be visible
	got, err := s.GetItem(ctx, "widgets", store.Key{Partition: "w1"})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.String("owner_id") != "alice" {
		t.Fatalf("Conditional put overwrote existing item: %v", got)
	}
}

func testUpdate(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	if err := s.PutItem(ctx, "widgets", widget("w1", "alice", time.Now())); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}

	merged, err := s.UpdateItem(ctx, "widgets", store.Key{Partition: "w1"}, store.Item{"label": "patched"})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if merged.String("label") != "patched" {
		t.Fatalf("Merged item missing patched field: %v", merged)
	}
	if merged.String("owner_id") != "alice" {
		t.Fatalf("Merge dropped untouched field: %v", merged)
	}

	got, err := s.GetItem(ctx, "widgets", store.Key{Partition: "w1"})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.String("label") != "patched" {
		t.Fatalf("Update not persisted: %v", got)
	}

	_, err = s.UpdateItem(ctx, "widgets", store.Key{Partition: "missing"}, store.Item{"label": "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	if err := s.PutItem(ctx, "widgets", widget("w1", "alice", time.Now())); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}
	if err := s.DeleteItem(ctx, "widgets", store.Key{Partition: "w1"}); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	_, err := s.GetItem(ctx, "widgets", store.Key{Partition: "w1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is not an error
	if err := s.DeleteItem(ctx, "widgets", store.Key{Partition: "w1"}); err != nil {
		t.Fatalf("Second delete should be a no-op, got %v", err)
	}
}

func testCompositeKeys(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, noteSchema())
	defer s.Close()

	now := time.Now()
	a := store.Item{"widget_id": "w1", "note_id": "n1", "body": "first", "created_at": store.FormatTime(now)}
	b := store.Item{"widget_id": "w1", "note_id": "n2", "body": "second", "created_at": store.FormatTime(now.Add(time.Second))}
	for _, it := range []store.Item{a, b} {
		if err := s.PutItem(ctx, "notes", it); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}

	got, err := s.GetItem(ctx, "notes", store.Key{Partition: "w1", Sort: "n2"})
	if err != nil {
		t.Fatalf("GetItem composite failed: %v", err)
	}
	if got.String("body") != "second" {
		t.Fatalf("Wrong item for composite key: %v", got)
	}

	if err := s.DeleteItem(ctx, "notes", store.Key{Partition: "w1", Sort: "n1"}); err != nil {
		t.Fatalf("DeleteItem composite failed: %v", err)
	}
	_, err = s.GetItem(ctx, "notes", store.Key{Partition: "w1", Sort: "n1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after composite delete, got %v", err)
	}

	// Sibling under the same partition survives
	if _, err := s.GetItem(ctx, "notes", store.Key{Partition: "w1", Sort: "n2"}); err != nil {
		t.Fatalf("Sibling item lost: %v", err)
	}
}

func testQueryByIndex(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"w1", "w2", "w3"} {
		if err := s.PutItem(ctx, "widgets", widget(id, "alice", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}
	if err := s.PutItem(ctx, "widgets", widget("w9", "bob", base)); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}

	asc, err := s.QueryByIndex(ctx, "widgets", "owner_id-index", "alice", true)
	if err != nil {
		t.Fatalf("QueryByIndex failed: %v", err)
	}
	if len(asc) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(asc))
	}
	for i, want := range []string{"w1", "w2", "w3"} {
		if asc[i].String("widget_id") != want {
			t.Fatalf("Ascending order wrong at %d: got %q, want %q", i, asc[i].String("widget_id"), want)
		}
	}

	desc, err := s.QueryByIndex(ctx, "widgets", "owner_id-index", "alice", false)
	if err != nil {
		t.Fatalf("QueryByIndex descending failed: %v", err)
	}
	for i, want := range []string{"w3", "w2", "w1"} {
		if desc[i].String("widget_id") != want {
			t.Fatalf("Descending order wrong at %d: got %q, want %q", i, desc[i].String("widget_id"), want)
		}
	}

	empty, err := s.QueryByIndex(ctx, "widgets", "owner_id-index", "nobody", true)
	if err != nil {
		t.Fatalf("QueryByIndex on unmatched value failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no items, got %d", len(empty))
	}

	_, err = s.QueryByIndex(ctx, "widgets", "bogus-index", "alice", true)
	if !errors.Is(err, store.ErrUnknownIndex) {
		t.Fatalf("Expected ErrUnknownIndex, got %v", err)
	}
}

func testScan(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	empty, err := s.Scan(ctx, "widgets")
	if err != nil {
		t.Fatalf("Scan of empty collection failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected empty scan, got %d items", len(empty))
	}

	now := time.Now()
	for _, id := range []string{"w1", "w2", "w3"} {
		if err := s.PutItem(ctx, "widgets", widget(id, "alice", now)); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}

	all, err := s.Scan(ctx, "widgets")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(all))
	}
	seen := make(map[string]bool)
	for _, it := range all {
		seen[it.String("widget_id")] = true
	}
	for _, id := range []string{"w1", "w2", "w3"} {
		if !seen[id] {
			t.Fatalf("Scan missing %q", id)
		}
	}
}

func testUnknownCollection(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	_, err := s.GetItem(ctx, "gizmos", store.Key{Partition: "g1"})
	if !errors.Is(err, store.ErrUnknownCollection) {
		t.Fatalf("Expected ErrUnknownCollection, got %v", err)
	}
	if err := s.PutItem(ctx, "gizmos", store.Item{"widget_id": "g1"}); !errors.Is(err, store.ErrUnknownCollection) {
		t.Fatalf("Expected ErrUnknownCollection, got %v", err)
	}
	if _, err := s.Scan(ctx, "gizmos"); !errors.Is(err, store.ErrUnknownCollection) {
		t.Fatalf("Expected ErrUnknownCollection, got %v", err)
	}
}

func testHealthCheck(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t, widgetSchema())
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}
