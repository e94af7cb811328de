package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/store/storetest"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("KORERO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KORERO_TEST_POSTGRES_DSN not set, skipping Postgres tests")
	}

	factory := func(t *testing.T, schemas ...*store.Schema) store.Store {
		ctx := context.Background()
		s, err := New(ctx, dsn, schemas...)
		if err != nil {
			t.Fatalf("Failed to create Postgres store: %v", err)
		}

		// The migration under db/migrations must have been applied.
		if _, err := s.pool.Exec(ctx, `TRUNCATE items`); err != nil {
			t.Fatalf("Failed to clear items table (run migrations first): %v", err)
		}

		return s
	}

	storetest.RunConformanceTests(t, factory)
}
