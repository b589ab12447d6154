package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc) *UserIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return NewUserIndex(es, "users", nil)
}

func TestIndexUser(t *testing.T) {
	var got map[string]any
	var path, method string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	u := entity.NewUser("u1", "alice@example.com", "hash", "alice", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	u.Skills = []entity.Skill{{Sport: "Tennis", SkillName: "Serve"}, {Sport: "Tennis", SkillName: "Volley"}, {Sport: "Golf", SkillName: "Putt"}}
	require.NoError(t, idx.Index(context.Background(), u))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/users/_doc/u1", path)
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, []any{"Tennis", "Golf"}, got["sports"])
	assert.NotContains(t, got, "password")
}

func TestSearchUsers(t *testing.T) {
	var query map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/_search", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&query)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"b"},{"_id":"a"}]}}`))
	})

	ids, err := idx.Search(context.Background(), "ali", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.EqualValues(t, 5, query["size"])
	assert.Contains(t, query["query"], "multi_match")
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	idx := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	for i := 0; i < 6; i++ {
		_, err := idx.Search(context.Background(), "x", 1)
		require.Error(t, err)
	}
	_, err := idx.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 6, calls.Load())
}
