// Package postgres implements store.Store on PostgreSQL. All collections
// share a single items table keyed by (collection, pk, sk) with the
// record body in a jsonb column; indexed queries filter on jsonb fields
// backed by expression indexes. The schema is managed by goose (see
// db/migrations).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/korero-app/korero-backend/internal/store"
)

// Store is a PostgreSQL-backed store.Store implementation.
type Store struct {
	pool    *pgxpool.Pool
	schemas map[string]*store.Schema
}

// New connects to the database at dsn and verifies the connection.
func New(ctx context.Context, dsn string, schemas ...*store.Schema) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &Store{pool: pool, schemas: make(map[string]*store.Schema, len(schemas))}
	for _, sc := range schemas {
		s.schemas[sc.Name] = sc
	}
	return s, nil
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

	var it store.Item
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM items WHERE collection = $1 AND pk = $2 AND sk = $3`,
		collection, key.Partition, key.Sort,
	).Scan(&it)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get: %w", err)
	}
	return it, nil
}

func (s *Store) PutItem(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	key := sc.KeyOf(item)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO items (collection, pk, sk, doc) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, pk, sk) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, key.Partition, key.Sort, item,
	)
	if err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}
	return nil
}

func (s *Store) PutItemIfAbsent(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	key := sc.KeyOf(item)
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO items (collection, pk, sk, doc) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, pk, sk) DO NOTHING`,
		collection, key.Partition, key.Sort, item,
	)
	if err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, collection string, key store.Key, fields store.Item) (store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	var it store.Item
	err := s.pool.QueryRow(ctx,
		`UPDATE items SET doc = doc || $4
		 WHERE collection = $1 AND pk = $2 AND sk = $3
		 RETURNING doc`,
		collection, key.Partition, key.Sort, fields,
	).Scan(&it)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres update: %w", err)
	}
	return it, nil
}

func (s *Store) DeleteItem(ctx context.Context, collection string, key store.Key) error {
	if _, err := s.schema(collection); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`DELETE FROM items WHERE collection = $1 AND pk = $2 AND sk = $3`,
		collection, key.Partition, key.Sort,
	)
	if err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
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

	order := "DESC"
	if ascending {
		order = "ASC"
	}
	sortField := sc.SortField
	if sortField == "" {
		sortField = sc.PartitionKey
	}

	// ix.Field and sortField come from compiled-in schemas, never request
	// input, so interpolating them is safe.
	q := fmt.Sprintf(
		`SELECT doc FROM items
		 WHERE collection = $1 AND doc->>'%s' = $2
		 ORDER BY doc->>'%s' %s, pk %s, sk %s`,
		ix.Field, sortField, order, order, order,
	)
	rows, err := s.pool.Query(ctx, q, collection, value)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	return collect(rows)
}

func (s *Store) Scan(ctx context.Context, collection string) ([]store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT doc FROM items WHERE collection = $1`, collection)
	if err != nil {
		return nil, fmt.Errorf("postgres scan: %w", err)
	}
	return collect(rows)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func collect(rows pgx.Rows) ([]store.Item, error) {
	defer rows.Close()

	var items []store.Item
	for rows.Next() {
		var it store.Item
		if err := rows.Scan(&it); err != nil {
			return nil, fmt.Errorf("postgres scan row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows: %w", err)
	}
	return items, nil
}
