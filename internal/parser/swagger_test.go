package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatewayDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "gateway", "version": "1.0.0"},
  "paths": {
    "/tmdb/search": {
      "get": {
        "summary": "Search",
        "parameters": [
          {"name": "q", "in": "query", "required": true, "schema": {"type": "string"}, "example": "Avengers"},
          {"name": "page", "in": "query", "schema": {"type": "integer"}}
        ],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {
              "type": "object",
              "required": ["results", "page"],
              "properties": {"results": {"type": "array", "items": {}}, "page": {"type": "integer"}}
            }}}
          },
          "400": {"description": "missing q"}
        }
      }
    },
    "/tmdb/movie/{id}": {
      "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}],
      "get": {
        "responses": {"200": {"description": "movie"}}
      },
      "delete": {
        "responses": {"204": {"description": "gone"}}
      }
    }
  }
}`

func TestParseOperations(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path != "/swagger.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gatewayDoc))
	}))
	defer srv.Close()

	ops, err := NewSwaggerParser(srv.URL, time.Second, nil).ParseOperations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/openapi.json", "/swagger.json"}, hits)

	require.Len(t, ops, 2)

	movie := ops[0]
	assert.Equal(t, "/tmdb/movie/{id}", movie.Path)
	assert.Equal(t, http.MethodGet, movie.Method)
	require.Len(t, movie.Parameters, 1)
	assert.Equal(t, "path", movie.Parameters[0].In)
	assert.Equal(t, 1, movie.Parameters[0].Example)

	search := ops[1]
	assert.Equal(t, "/tmdb/search", search.Path)
	assert.Equal(t, "Search", search.Summary)
	require.Len(t, search.Parameters, 2)
	assert.Equal(t, "Avengers", search.Parameters[0].Example)
	assert.True(t, search.Parameters[0].Required)
	assert.False(t, search.Parameters[1].Required)
	assert.Equal(t, []string{"page", "results"}, search.Responses[200].Required)
	assert.Equal(t, []string{"results"}, search.Responses[200].Arrays)
	assert.Contains(t, search.Responses, 400)
}

func TestParseOperationsDirectURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/docs/gateway.json", r.URL.Path)
		_, _ = w.Write([]byte(gatewayDoc))
	}))
	defer srv.Close()

	ops, err := NewSwaggerParser(srv.URL+"/docs/gateway.json", time.Second, nil).ParseOperations(context.Background())
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestParseOperationsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewSwaggerParser(srv.URL, time.Second, nil).ParseOperations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
}
