package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type countingRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *countingRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *countingRateStore) keyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

func loginRequest(email, remoteAddr string) *http.Request {
	body := `{"email":"` + email + `","password":"hunter2hunter2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	return req
}

func decodeErrorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload.Error.Code
}

func TestAuthRateLimitPassesThroughAndRestoresBody(t *testing.T) {
	t.Parallel()

	store := &countingRateStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 5)

	var seenBody string
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seenBody = string(raw)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "10.0.0.1:40000"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seenBody, `"email":"tester@example.com"`)
	assert.Equal(t, 2, store.keyCount(), "expected one ip counter and one email counter")
}

func TestAuthRateLimitBlocksEmailAcrossAddresses(t *testing.T) {
	t.Parallel()

	store := &countingRateStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Case and whitespace variants of the same address share one counter
	// even when the client hops IPs.
	attempts := []struct {
		email string
		addr  string
	}{
		{"blocked@example.com", "10.0.0.1:1"},
		{"  Blocked@Example.COM ", "10.0.0.2:2"},
		{"BLOCKED@example.com", "10.0.0.3:3"},
	}

	for i, attempt := range attempts {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(attempt.email, attempt.addr))

		if i < 2 {
			require.Equal(t, http.StatusOK, rec.Code, "attempt %d should pass", i)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, string(pkgerrors.CodeRateLimit), decodeErrorCode(t, rec.Body.Bytes()))
	}
}

func TestAuthRateLimitBlocksByForwardedIP(t *testing.T) {
	t.Parallel()

	store := &countingRateStore{}
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := loginRequest("anyone@example.com", "127.0.0.1:9999")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 {
			require.Equal(t, http.StatusOK, rec.Code)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	}
}

func TestAuthRateLimitDisabledPolicyIsTransparent(t *testing.T) {
	t.Parallel()

	store := &countingRateStore{}
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("free@example.com", "10.9.8.7:6"))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Zero(t, store.keyCount())
}
