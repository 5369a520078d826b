package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jjudge-oj/glossary/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	gens   map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}, gens: map[string]int64{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return nil, redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryStore) Generation(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[prefix], nil
}

func (m *memoryStore) Bump(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[prefix]++
	return nil
}

func (m *memoryStore) generation(prefix string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[prefix]
}

type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	status := h.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`[{"word":"API"}]`))
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestCacheReplaysGet(t *testing.T) {
	store := newMemoryStore()
	next := &countingHandler{}
	handler := New(store, config.CacheConfig{Prefix: "test"}, nil).Middleware(next)

	first := serve(handler, http.MethodGet, "/terms?q=api")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(handler, http.MethodGet, "/terms?q=api")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, next.calls)

	serve(handler, http.MethodGet, "/terms?q=sdk")
	assert.Equal(t, 2, next.calls)
}

func TestCacheSkipsNonOKResponses(t *testing.T) {
	store := newMemoryStore()
	next := &countingHandler{status: http.StatusNotFound}
	handler := New(store, config.CacheConfig{Prefix: "test"}, nil).Middleware(next)

	serve(handler, http.MethodGet, "/terms/x")
	serve(handler, http.MethodGet, "/terms/x")
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, store.values)
}

func TestCacheInvalidatedOnSuccessfulWrite(t *testing.T) {
	store := newMemoryStore()
	next := &countingHandler{}
	handler := New(store, config.CacheConfig{Prefix: "test"}, nil).Middleware(next)

	serve(handler, http.MethodGet, "/terms")
	require.Len(t, store.values, 1)

	serve(handler, http.MethodPost, "/terms")
	assert.Equal(t, int64(1), store.generation("test"))

	rec := serve(handler, http.MethodGet, "/terms")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 3, next.calls)

	next.status = http.StatusForbidden
	serve(handler, http.MethodDelete, "/terms/x")
	assert.Equal(t, int64(1), store.generation("test"))
}

// glossaryState serves the current value on GET and replaces it on PUT.
// beforeWrite runs after a GET has read the value but before it responds.
type glossaryState struct {
	mu          sync.Mutex
	value       string
	beforeWrite func()
}

func (s *glossaryState) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		s.mu.Lock()
		s.value = "new"
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mu.Lock()
	value := s.value
	hook := s.beforeWrite
	s.beforeWrite = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	_, _ = w.Write([]byte(value))
}

func TestCacheDoesNotKeepReadOlderThanConcurrentWrite(t *testing.T) {
	store := newMemoryStore()
	state := &glossaryState{value: "old"}
	handler := New(store, config.CacheConfig{Prefix: "test"}, nil).Middleware(state)

	state.beforeWrite = func() {
		rec := serve(handler, http.MethodPut, "/terms/x")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	stale := serve(handler, http.MethodGet, "/terms")
	assert.Equal(t, "old", stale.Body.String())

	fresh := serve(handler, http.MethodGet, "/terms")
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Equal(t, "new", fresh.Body.String())

	cached := serve(handler, http.MethodGet, "/terms")
	assert.Equal(t, "HIT", cached.Header().Get("X-Cache"))
	assert.Equal(t, "new", cached.Body.String())
}

func TestKeyIncludesQueryAndGeneration(t *testing.T) {
	c := New(newMemoryStore(), config.CacheConfig{Prefix: "glossary"}, nil)

	a := c.Key(0, httptest.NewRequest(http.MethodGet, "/terms?q=a", nil))
	b := c.Key(0, httptest.NewRequest(http.MethodGet, "/terms?q=b", nil))
	a1 := c.Key(1, httptest.NewRequest(http.MethodGet, "/terms?q=a", nil))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, a1)
	assert.True(t, strings.HasPrefix(a, "glossary:0:"))
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *Cache
	next := &countingHandler{}
	rec := serve(c.Middleware(next), http.MethodGet, "/terms")
	assert.Equal(t, 1, next.calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	header := http.Header{"Content-Type": []string{"application/json"}}
	payload, err := encodePayload(http.StatusOK, header, []byte("{}"))
	require.NoError(t, err)

	status, decoded, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, header, decoded)
	assert.Equal(t, "{}", string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
