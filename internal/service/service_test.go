package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/store/memory"
)

// newTestStore returns a fresh memory backend over the real collection
// schemas.
func newTestStore() store.Store {
	return memory.New(entities.Schemas()...)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// stepClock returns a clock that advances by step on every call, so
// created_at ordering is deterministic.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		cur := t
		t = t.Add(step)
		return cur
	}
}

// seedProfile creates a profile for userID directly through the service.
func seedProfile(t *testing.T, st store.Store, userID, displayName string) {
	t.Helper()
	svc := NewProfileService(st, testLogger())
	_, err := svc.Create(context.Background(), userID, CreateProfileInput{
		DisplayName: displayName,
	})
	require.NoError(t, err)
}
