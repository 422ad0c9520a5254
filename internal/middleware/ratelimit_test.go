package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/model"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("u1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("u1"))

	// Buckets are per key.
	assert.True(t, rl.Allow("u2"))
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Allow("u1")
	rl.Allow("u2")

	rl.mu.Lock()
	rl.limiters["u1"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "u1")
	assert.Contains(t, rl.limiters, "u2")
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Hour))(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	asUser := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/goals/g1/media", nil)
		return req.WithContext(ctxkeys.WithUser(req.Context(), &model.Author{ID: id}))
	}

	rec := httptest.NewRecorder()
	h(rec, asUser("u1"))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, asUser("u1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too many requests, try again later", body["error"])

	rec = httptest.NewRecorder()
	h(rec, asUser("u2"))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Anonymous callers share a bucket per address.
	anon := httptest.NewRequest(http.MethodPost, "/api/goals/g1/media", nil)
	anon.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec = httptest.NewRecorder()
	h(rec, anon)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, anon)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5432"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", " 198.51.100.2 ")
	assert.Equal(t, "198.51.100.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}
