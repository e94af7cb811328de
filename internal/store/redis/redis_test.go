package redis

import (
	"context"
	"os"
	"testing"

	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/store/storetest"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("KORERO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KORERO_TEST_REDIS_ADDR not set, skipping Redis tests")
	}

	factory := func(t *testing.T, schemas ...*store.Schema) store.Store {
		s, err := New(addr, schemas...)
		if err != nil {
			t.Fatalf("Failed to create Redis store: %v", err)
		}

		// Clear leftovers from previous runs
		ctx := context.Background()
		keys, err := s.client.Keys(ctx, keyPrefix+":*").Result()
		if err != nil {
			t.Fatalf("Failed to list test keys: %v", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				t.Fatalf("Failed to clear test keys: %v", err)
			}
		}

		return s
	}

	storetest.RunConformanceTests(t, factory)
}
