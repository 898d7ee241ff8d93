package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tmdb/movie/24428", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":24428,"title":"The Avengers"}`))
	}))
	defer srv.Close()

	e := NewExecutor(Config{BaseURL: srv.URL + "/api/", Headers: map[string]string{"Authorization": "Bearer t"}}, nil)
	out := e.Do(context.Background(), Request{
		Path:       "/tmdb/movie/{id}",
		PathParams: map[string]string{"id": "24428"},
	})

	require.False(t, out.Failed())
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.False(t, out.DecodeError)
	body, ok := out.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "The Avengers", body["title"])
	assert.Equal(t, "application/json", out.Header.Get("Content-Type"))
	assert.Greater(t, out.Elapsed, time.Duration(0))
}

func TestDoNonJSONBody(t *testing.T) {
	html := "<html>" + strings.Repeat("x", 500) + "</html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	out := NewExecutor(Config{BaseURL: srv.URL}, nil).Do(context.Background(), Request{Path: "/"})

	require.False(t, out.Failed())
	assert.Equal(t, http.StatusBadGateway, out.StatusCode)
	assert.True(t, out.DecodeError)
	body, ok := out.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Invalid JSON response", body["error"])
	assert.Len(t, body["text"], PreviewLength)
	assert.True(t, strings.HasPrefix(body["text"].(string), "<html>"))
}

func TestDoEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out := NewExecutor(Config{BaseURL: srv.URL}, nil).Do(context.Background(), Request{Method: http.MethodOptions, Path: "/"})
	assert.Equal(t, http.StatusNoContent, out.StatusCode)
	assert.Nil(t, out.Body)
	assert.False(t, out.DecodeError)
}

func TestDoConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	out := NewExecutor(Config{BaseURL: base}, nil).Do(context.Background(), Request{Path: "/"})
	assert.True(t, out.Failed())
	assert.Equal(t, 0, out.StatusCode)
	assert.Nil(t, out.Body)
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	out := NewExecutor(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil).Do(context.Background(), Request{Path: "/"})
	assert.True(t, out.Failed())
	assert.Equal(t, 0, out.StatusCode)
}

func TestURL(t *testing.T) {
	e := NewExecutor(Config{BaseURL: "https://gw.example.com/api"}, nil)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"root", Request{Path: "/"}, "https://gw.example.com/api/"},
		{"no leading slash", Request{Path: "tmdb/trending"}, "https://gw.example.com/api/tmdb/trending"},
		{
			"query encoded",
			Request{Path: "/tmdb/search", Query: map[string]string{"q": "Spider-Man: No Way Home"}},
			"https://gw.example.com/api/tmdb/search?q=Spider-Man%3A+No+Way+Home",
		},
		{"empty query value kept", Request{Path: "/tmdb/search", Query: map[string]string{"q": ""}}, "https://gw.example.com/api/tmdb/search?q="},
		{
			"path params escaped",
			Request{Path: "/tmdb/tv/{id}/season/{n}", PathParams: map[string]string{"id": "1396", "n": "a b"}},
			"https://gw.example.com/api/tmdb/tv/1396/season/a%20b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.URL(tt.req))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 5))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "éé", Preview("ééé", 2))
}
