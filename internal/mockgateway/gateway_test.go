package mockgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUpstream struct {
	inner Upstream
	calls atomic.Int32
}

func (c *countingUpstream) Fetch(ctx context.Context, endpoint string) (interface{}, error) {
	c.calls.Add(1)
	return c.inner.Fetch(ctx, endpoint)
}

func newTestGateway(t *testing.T, latency time.Duration) (*Gateway, *countingUpstream) {
	t.Helper()
	up := &countingUpstream{inner: NewFixtureUpstream(DefaultFixtures(), latency)}
	return New(up, Config{}, nil), up
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return rec, body
}

func TestRoutes(t *testing.T) {
	gw, _ := newTestGateway(t, 0)

	tests := []struct {
		name   string
		target string
		status int
		key    string
	}{
		{"root", "/api/", http.StatusOK, "message"},
		{"search", "/api/tmdb/search?q=Avengers", http.StatusOK, "results"},
		{"trending", "/api/tmdb/trending", http.StatusOK, "results"},
		{"trending movie day", "/api/tmdb/trending?type=movie&time=day", http.StatusOK, "results"},
		{"popular movies", "/api/tmdb/popular/movies", http.StatusOK, "results"},
		{"large page", "/api/tmdb/popular/movies?page=999", http.StatusOK, "results"},
		{"popular tv", "/api/tmdb/popular/tv", http.StatusOK, "results"},
		{"top rated movies", "/api/tmdb/top-rated/movies", http.StatusOK, "results"},
		{"top rated tv", "/api/tmdb/top-rated/tv", http.StatusOK, "results"},
		{"now playing", "/api/tmdb/now-playing", http.StatusOK, "results"},
		{"upcoming", "/api/tmdb/upcoming", http.StatusOK, "results"},
		{"discover", "/api/tmdb/discover?type=movie&genre=28&year=2023&sort_by=vote_average.desc", http.StatusOK, "results"},
		{"movie", "/api/tmdb/movie/24428", http.StatusOK, "title"},
		{"tv", "/api/tmdb/tv/1396", http.StatusOK, "name"},
		{"season", "/api/tmdb/tv/1396/season/1", http.StatusOK, "episodes"},
		{"missing query", "/api/tmdb/search", http.StatusBadRequest, "error"},
		{"empty query", "/api/tmdb/search?q=", http.StatusBadRequest, "error"},
		{"unknown movie", "/api/tmdb/movie/999999999", http.StatusNotFound, "error"},
		{"unknown season", "/api/tmdb/tv/1396/season/999", http.StatusNotFound, "error"},
		{"unknown route", "/api/tmdb/invalid-route", http.StatusNotFound, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, gw, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, body, tt.key)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSearchMatchesFixtures(t *testing.T) {
	gw, _ := newTestGateway(t, 0)

	_, body := get(t, gw, "/api/tmdb/search?q=Spider-Man%3A+No+Way+Home")
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "Spider-Man: No Way Home", results[0].(map[string]interface{})["title"])
}

func TestLargePageIsEmpty(t *testing.T) {
	gw, _ := newTestGateway(t, 0)

	_, body := get(t, gw, "/api/tmdb/popular/movies?page=999")
	assert.Empty(t, body["results"])
	assert.Equal(t, float64(999), body["page"])
}

func TestDiscoverFilters(t *testing.T) {
	gw, _ := newTestGateway(t, 0)

	_, body := get(t, gw, "/api/tmdb/discover?genre=28&year=2023")
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "Fast X", results[0].(map[string]interface{})["title"])
}

func TestPreflight(t *testing.T) {
	gw, _ := newTestGateway(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/tmdb/trending", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestCacheHit(t *testing.T) {
	gw, up := newTestGateway(t, 0)

	first, _ := get(t, gw, "/api/tmdb/movie/603")
	second, _ := get(t, gw, "/api/tmdb/movie/603")

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestNotFoundIsNotCached(t *testing.T) {
	gw, up := newTestGateway(t, 0)

	get(t, gw, "/api/tmdb/movie/1")
	get(t, gw, "/api/tmdb/movie/1")
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestCacheExpiry(t *testing.T) {
	gw, up := newTestGateway(t, 0)
	now := time.Now()
	gw.cache.now = func() time.Time { return now }

	get(t, gw, "/api/tmdb/tv/1399")
	now = now.Add(DefaultCacheTTL)
	rec, _ := get(t, gw, "/api/tmdb/tv/1399")

	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), up.calls.Load())
	assert.Equal(t, 1, gw.cache.purge())
}

func TestConcurrentMissesCollapse(t *testing.T) {
	gw, up := newTestGateway(t, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			gw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tmdb/tv/66732", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), up.calls.Load())
}

func TestServe(t *testing.T) {
	gw, _ := newTestGateway(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- gw.Serve(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
