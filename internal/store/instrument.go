package store

import (
	"context"
	"time"

	"github.com/korero-app/korero-backend/internal/metrics"
)

// Instrumented wraps a Store and records an operation counter and
// duration histogram per call.
func Instrumented(s Store, m *metrics.Metrics) Store {
	return &instrumented{next: s, metrics: m}
}

type instrumented struct {
	next    Store
	metrics *metrics.Metrics
}

func (s *instrumented) record(ctx context.Context, op, collection string, start time.Time, err error) {
	s.metrics.RecordStoreOp(ctx, op, collection, err, time.Since(start))
}

func (s *instrumented) GetItem(ctx context.Context, collection string, key Key) (Item, error) {
	start := time.Now()
	it, err := s.next.GetItem(ctx, collection, key)
	s.record(ctx, "get", collection, start, err)
	return it, err
}

func (s *instrumented) PutItem(ctx context.Context, collection string, item Item) error {
	start := time.Now()
	err := s.next.PutItem(ctx, collection, item)
	s.record(ctx, "put", collection, start, err)
	return err
}

func (s *instrumented) PutItemIfAbsent(ctx context.Context, collection string, item Item) error {
	start := time.Now()
	err := s.next.PutItemIfAbsent(ctx, collection, item)
	s.record(ctx, "put_if_absent", collection, start, err)
	return err
}

func (s *instrumented) UpdateItem(ctx context.Context, collection string, key Key, fields Item) (Item, error) {
	start := time.Now()
	it, err := s.next.UpdateItem(ctx, collection, key, fields)
	s.record(ctx, "update", collection, start, err)
	return it, err
}

func (s *instrumented) DeleteItem(ctx context.Context, collection string, key Key) error {
	start := time.Now()
	err := s.next.DeleteItem(ctx, collection, key)
	s.record(ctx, "delete", collection, start, err)
	return err
}

func (s *instrumented) QueryByIndex(ctx context.Context, collection, index, value string, ascending bool) ([]Item, error) {
	start := time.Now()
	items, err := s.next.QueryByIndex(ctx, collection, index, value, ascending)
	s.record(ctx, "query", collection, start, err)
	return items, err
}

func (s *instrumented) Scan(ctx context.Context, collection string) ([]Item, error) {
	start := time.Now()
	items, err := s.next.Scan(ctx, collection)
	s.record(ctx, "scan", collection, start, err)
	return items, err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
