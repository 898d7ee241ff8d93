package catalog

import (
	"net/http"

	"tmdb-api-tester/internal/types"
)

// Tags used by the built-in catalog
const (
	TagCore    = "core"
	TagListing = "listing"
	TagEdge    = "edge"
	TagCache   = "cache"
)

func results() *types.Shape {
	return &types.Shape{Arrays: []string{"results"}}
}

func listing(name, path string, query map[string]string, tags ...string) types.EndpointContract {
	return types.EndpointContract{
		Name:  name,
		Kind:  types.KindShape,
		Path:  path,
		Query: query,
		Shape: results(),
		Tags:  tags,
	}
}

// Default returns the built-in contract catalog for the TMDB gateway, in run order.
// Timing contracts target items no earlier contract touches so their first sample is a cache miss.
func Default() []types.EndpointContract {
	return []types.EndpointContract{
		{
			Name:  "Health Check",
			Path:  "/",
			Shape: &types.Shape{Keys: []string{"message"}},
			Tags:  []string{TagCore},
		},
		{
			Name: "CORS Preflight",
			Kind: types.KindCORS,
			Path: "/tmdb/trending",
			Tags: []string{TagCore},
		},
		listing("Search - Valid Query", "/tmdb/search", map[string]string{"q": "Avengers"}, TagCore),
		{
			Name:          "Search - Missing Query",
			Kind:          types.KindNegative,
			Path:          "/tmdb/search",
			ExpectFailure: true,
			FailureStatus: []int{http.StatusBadRequest},
			Tags:          []string{TagCore},
		},
		{
			Name:          "Search - Empty Query",
			Kind:          types.KindNegative,
			Path:          "/tmdb/search",
			Query:         map[string]string{"q": ""},
			ExpectFailure: true,
			FailureStatus: []int{http.StatusBadRequest},
			Tags:          []string{TagEdge},
		},
		listing("Search - Special Characters", "/tmdb/search", map[string]string{"q": "Spider-Man: No Way Home"}, TagEdge),
		listing("Trending - Default", "/tmdb/trending", nil, TagCore),
		listing("Trending - With Params", "/tmdb/trending", map[string]string{"type": "movie", "time": "day"}, TagCore),
		listing("Trending - Weekly", "/tmdb/trending", map[string]string{"time": "week"}, TagEdge),
		listing("Popular Movies", "/tmdb/popular/movies", nil, TagCore),
		listing("Popular Movies - Large Page", "/tmdb/popular/movies", map[string]string{"page": "999"}, TagEdge),
		listing("Popular TV Shows", "/tmdb/popular/tv", nil, TagCore),
		{
			Name:       "Movie Details",
			Path:       "/tmdb/movie/{id}",
			PathParams: map[string]string{"id": "24428"},
			Shape:      &types.Shape{Keys: []string{"id", "title"}},
			Tags:       []string{TagCore},
		},
		{
			Name:          "Movie Details - Invalid ID",
			Kind:          types.KindNegative,
			Path:          "/tmdb/movie/{id}",
			PathParams:    map[string]string{"id": "999999999"},
			ExpectFailure: true,
			Tags:          []string{TagCore},
		},
		{
			Name:       "TV Details",
			Path:       "/tmdb/tv/{id}",
			PathParams: map[string]string{"id": "1396"},
			Shape:      &types.Shape{Keys: []string{"id", "name"}},
			Tags:       []string{TagCore},
		},
		{
			Name:       "TV Season Details",
			Path:       "/tmdb/tv/{id}/season/{season}",
			PathParams: map[string]string{"id": "1396", "season": "1"},
			Shape:      &types.Shape{Arrays: []string{"episodes"}},
			Tags:       []string{TagCore},
		},
		{
			Name:          "TV Season - Invalid",
			Kind:          types.KindNegative,
			Path:          "/tmdb/tv/{id}/season/{season}",
			PathParams:    map[string]string{"id": "1396", "season": "999"},
			ExpectFailure: true,
			FailureStatus: []int{http.StatusNotFound},
			Tags:          []string{TagEdge},
		},
		{
			Name:       "Caching Functionality",
			Kind:       types.KindTiming,
			Path:       "/tmdb/movie/{id}",
			PathParams: map[string]string{"id": "603"},
			Shape:      &types.Shape{Keys: []string{"id", "title"}},
			Tags:       []string{TagCache},
		},
		{
			Name:       "Caching - Isolation",
			Kind:       types.KindTiming,
			Path:       "/tmdb/tv/{id}",
			PathParams: map[string]string{"id": "1399"},
			Shape:      &types.Shape{Keys: []string{"id", "name"}},
			Timing:     &types.TimingPolicy{Samples: 3, Consistent: true},
			Tags:       []string{TagCache},
		},
		listing("Top Rated Movies", "/tmdb/top-rated/movies", nil, TagListing),
		listing("Top Rated TV", "/tmdb/top-rated/tv", nil, TagListing),
		listing("Now Playing Movies", "/tmdb/now-playing", nil, TagListing),
		listing("Upcoming Movies", "/tmdb/upcoming", nil, TagListing),
		listing("Discover Movies", "/tmdb/discover", map[string]string{"type": "movie"}, TagListing),
		listing("Discover - Filters", "/tmdb/discover", map[string]string{
			"type":    "movie",
			"genre":   "28",
			"year":    "2023",
			"sort_by": "vote_average.desc",
		}, TagEdge),
		{
			Name:          "Error Handling - Invalid Route",
			Kind:          types.KindNegative,
			Path:          "/tmdb/invalid-route",
			ExpectFailure: true,
			FailureStatus: []int{http.StatusNotFound},
			Tags:          []string{TagCore},
		},
	}
}
