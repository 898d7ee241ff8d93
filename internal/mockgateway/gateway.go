package mockgateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"tmdb-api-tester/internal/logger"
)

// Defaults for Config
const (
	DefaultCacheTTL   = 15 * time.Minute
	DefaultCORSOrigin = "*"
	DefaultMessage    = "TMDB Media API"
)

// Config tunes the mock gateway
type Config struct {
	CacheTTL   time.Duration
	CORSOrigin string
	Message    string
}

// Gateway is an http.Handler mirroring the media gateway routes under /api
type Gateway struct {
	cfg      Config
	upstream Upstream
	cache    *ttlCache
	group    singleflight.Group
	router   chi.Router
	logger   *slog.Logger
}

// New wires the router over upstream
func New(upstream Upstream, cfg Config, log *slog.Logger) *Gateway {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = DefaultCORSOrigin
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	g := &Gateway{
		cfg:      cfg,
		upstream: upstream,
		cache:    newTTLCache(cfg.CacheTTL),
		router:   r,
		logger:   log,
	}
	r.Use(g.logRequests)
	r.Use(g.cors)
	g.registerRoutes()
	return g
}

// ServeHTTP implements http.Handler
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

func (g *Gateway) registerRoutes() {
	g.router.NotFound(g.handleNotFound)
	g.router.MethodNotAllowed(g.handleNotFound)

	g.router.Route("/api", func(r chi.Router) {
		r.Get("/", g.handleRoot)
		r.Route("/tmdb", func(r chi.Router) {
			r.Get("/search", g.handleSearch)
			r.Get("/trending", g.handleTrending)
			r.Get("/popular/movies", g.handleList("/movie/popular"))
			r.Get("/popular/tv", g.handleList("/tv/popular"))
			r.Get("/top-rated/movies", g.handleList("/movie/top_rated"))
			r.Get("/top-rated/tv", g.handleList("/tv/top_rated"))
			r.Get("/now-playing", g.handleList("/movie/now_playing"))
			r.Get("/upcoming", g.handleList("/movie/upcoming"))
			r.Get("/discover", g.handleDiscover)
			r.Get("/movie/{id}", g.handleDetails("movie"))
			r.Get("/tv/{id}", g.handleDetails("tv"))
			r.Get("/tv/{id}/season/{season}", g.handleSeason)
		})
	})
}

func (g *Gateway) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", g.cfg.CORSOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		g.logger.Debug("request served",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
		)
	})
}

func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": g.cfg.Message})
}

func (g *Gateway) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("Route %s not found", r.URL.Path))
}

func (g *Gateway) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter required")
		return
	}
	g.proxy(w, r, "/search/multi?query="+url.QueryEscape(query)+"&include_adult=false")
}

func (g *Gateway) handleTrending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mediaType := valueOr(q.Get("type"), "all")
	window := valueOr(q.Get("time"), "week")
	g.proxy(w, r, fmt.Sprintf("/trending/%s/%s", url.PathEscape(mediaType), url.PathEscape(window)))
}

func (g *Gateway) handleList(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := valueOr(r.URL.Query().Get("page"), "1")
		g.proxy(w, r, endpoint+"?page="+url.QueryEscape(page))
	}
}

func (g *Gateway) handleDiscover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mediaType := "movie"
	if q.Get("type") == "tv" {
		mediaType = "tv"
	}

	params := url.Values{}
	params.Set("page", valueOr(q.Get("page"), "1"))
	params.Set("sort_by", valueOr(q.Get("sort_by"), "popularity.desc"))
	if genre := q.Get("genre"); genre != "" {
		params.Set("with_genres", genre)
	}
	if year := q.Get("year"); year != "" {
		params.Set("primary_release_year", year)
	}
	g.proxy(w, r, "/"+mediaType+"/popular?"+params.Encode())
}

func (g *Gateway) handleDetails(mediaType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		appendTo := valueOr(r.URL.Query().Get("append_to_response"), "credits,videos,similar")
		g.proxy(w, r, fmt.Sprintf("/%s/%s?append_to_response=%s", mediaType, url.PathEscape(id), url.QueryEscape(appendTo)))
	}
}

func (g *Gateway) handleSeason(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	season := chi.URLParam(r, "season")
	g.proxy(w, r, fmt.Sprintf("/tv/%s/season/%s", url.PathEscape(id), url.PathEscape(season)))
}

// proxy answers from the cache or the upstream. Unknown upstream resources become 404.
func (g *Gateway) proxy(w http.ResponseWriter, r *http.Request, endpoint string) {
	data, hit, err := g.fetch(r, endpoint)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "The resource you requested could not be found.")
			return
		}
		g.logger.Error("upstream fetch failed", "endpoint", endpoint, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(g.cfg.CacheTTL.Seconds())))
	writeJSON(w, http.StatusOK, data)
}

// fetch collapses concurrent misses for the same endpoint into one upstream call
func (g *Gateway) fetch(r *http.Request, endpoint string) (interface{}, bool, error) {
	if data, ok := g.cache.get(endpoint); ok {
		return data, true, nil
	}

	data, err, _ := g.group.Do(endpoint, func() (interface{}, error) {
		if cached, ok := g.cache.get(endpoint); ok {
			return cached, nil
		}
		data, err := g.upstream.Fetch(r.Context(), endpoint)
		if err != nil {
			return nil, err
		}
		g.cache.set(endpoint, data)
		return data, nil
	})
	return data, false, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
