package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimitLowRPM(t *testing.T) {
	m := &Middleware{logger: zap.NewNop().Sugar()}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Rates below 6 rpm used to round the burst down to zero, turning
	// every request away. The first request must always get through.
	for _, rpm := range []int{1, 2, 5} {
		handler := m.RateLimit(rpm)(ok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "rpm %d", rpm)
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	m := &Middleware{logger: zap.NewNop().Sugar()}
	handler := m.RateLimit(60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Burst is rpm/6; the 11th immediate request exceeds it.
	limited := false
	for i := 0; i < 11; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "expected the burst window to run out")
}
