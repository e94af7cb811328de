// Package redis implements store.Store on a Redis server. Items are JSON
// values under one key per record, with plain sets tracking collection
// membership and index buckets. Create-if-absent maps onto SETNX, which
// is what closes the duplicate-create window without a transaction.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/korero-app/korero-backend/internal/store"
)

const keyPrefix = "korero"

// Store is a Redis-backed store.Store implementation.
//
// The indexed fields of every collection (user_id on posts, post_id on
// comments, target_id on likes) are immutable after creation, so index
// buckets are only touched on put and delete, never on update.
type Store struct {
	client  *redis.Client
	schemas map[string]*store.Schema
}

// New connects to the Redis server at addr and verifies the connection.
func New(addr string, schemas ...*store.Schema) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	s := &Store{client: client, schemas: make(map[string]*store.Schema, len(schemas))}
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

func itemKey(collection string, key store.Key) string {
	return fmt.Sprintf("%s:items:%s:%s", keyPrefix, collection, key.Canonical())
}

func membersKey(collection string) string {
	return fmt.Sprintf("%s:keys:%s", keyPrefix, collection)
}

func indexKey(collection, index, value string) string {
	return fmt.Sprintf("%s:ix:%s:%s:%s", keyPrefix, collection, index, value)
}

func (s *Store) GetItem(ctx context.Context, collection string, key store.Key) (store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, itemKey(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeItem(raw)
}

func (s *Store) PutItem(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	k := itemKey(collection, sc.KeyOf(item))
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, k, raw, 0)
	s.trackMembership(ctx, pipe, sc, item, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *Store) PutItemIfAbsent(ctx context.Context, collection string, item store.Item) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	k := itemKey(collection, sc.KeyOf(item))
	ok, err := s.client.SetNX(ctx, k, raw, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}

	pipe := s.client.TxPipeline()
	s.trackMembership(ctx, pipe, sc, item, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, collection string, key store.Key, fields store.Item) (store.Item, error) {
	it, err := s.GetItem(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		it[k] = v
	}

	raw, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	if err := s.client.Set(ctx, itemKey(collection, key), raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis set: %w", err)
	}
	return it, nil
}

func (s *Store) DeleteItem(ctx context.Context, collection string, key store.Key) error {
	sc, err := s.schema(collection)
	if err != nil {
		return err
	}

	it, err := s.GetItem(ctx, collection, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	k := itemKey(collection, key)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.SRem(ctx, membersKey(collection), k)
	for _, ix := range sc.Indexes {
		pipe.SRem(ctx, indexKey(collection, ix.Name, it.String(ix.Field)), k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (s *Store) QueryByIndex(ctx context.Context, collection, index, value string, ascending bool) ([]store.Item, error) {
	sc, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Index(index); !ok {
		return nil, store.ErrUnknownIndex
	}

	keys, err := s.client.SMembers(ctx, indexKey(collection, index, value)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	items, err := s.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := sortValue(items[i], sc), sortValue(items[j], sc)
		if ascending {
			return a < b
		}
		return a > b
	})
	return items, nil
}

func (s *Store) Scan(ctx context.Context, collection string) ([]store.Item, error) {
	if _, err := s.schema(collection); err != nil {
		return nil, err
	}

	keys, err := s.client.SMembers(ctx, membersKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return s.fetch(ctx, keys)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// trackMembership queues the set additions recording that the item exists
// and is reachable through each declared index.
func (s *Store) trackMembership(ctx context.Context, pipe redis.Pipeliner, sc *store.Schema, item store.Item, k string) {
	pipe.SAdd(ctx, membersKey(sc.Name), k)
	for _, ix := range sc.Indexes {
		pipe.SAdd(ctx, indexKey(sc.Name, ix.Name, item.String(ix.Field)), k)
	}
}

// fetch multi-gets the given item keys, skipping members whose value
// vanished between SMEMBERS and MGET.
func (s *Store) fetch(ctx context.Context, keys []string) ([]store.Item, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	items := make([]store.Item, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		it, err := decodeItem([]byte(raw))
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func decodeItem(raw []byte) (store.Item, error) {
	var it store.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return it, nil
}

func sortValue(it store.Item, sc *store.Schema) string {
	if sc.SortField != "" {
		return it.String(sc.SortField)
	}
	return sc.KeyOf(it).Canonical()
}
