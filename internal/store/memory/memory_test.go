package memory

import (
	"testing"

	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T, schemas ...*store.Schema) store.Store {
		return New(schemas...)
	}

	storetest.RunConformanceTests(t, factory)
}
