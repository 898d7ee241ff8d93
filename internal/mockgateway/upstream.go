package mockgateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by an Upstream for unknown resources
var ErrNotFound = errors.New("resource not found")

// pageSize matches the provider's fixed page size
const pageSize = 20

// Upstream resolves a provider endpoint such as "/movie/603?append_to_response=credits"
type Upstream interface {
	Fetch(ctx context.Context, endpoint string) (interface{}, error)
}

// Page is the provider's paginated list envelope
type Page struct {
	Page         int           `json:"page"`
	Results      []interface{} `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// FixtureUpstream serves Fixtures after a simulated network latency
type FixtureUpstream struct {
	fixtures Fixtures
	latency  time.Duration
}

// NewFixtureUpstream creates an upstream over fixtures
func NewFixtureUpstream(fixtures Fixtures, latency time.Duration) *FixtureUpstream {
	return &FixtureUpstream{fixtures: fixtures, latency: latency}
}

// Fetch implements Upstream
func (u *FixtureUpstream) Fetch(ctx context.Context, endpoint string) (interface{}, error) {
	if u.latency > 0 {
		timer := time.NewTimer(u.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("bad endpoint %q: %w", endpoint, err)
	}
	q := parsed.Query()
	page := atoiDefault(q.Get("page"), 1)

	switch parsed.Path {
	case "/search/multi":
		return paginate(u.search(q.Get("query")), page), nil
	case "/movie/popular", "/movie/top_rated", "/movie/now_playing", "/movie/upcoming":
		return paginate(u.movies(q, parsed.Path), page), nil
	case "/tv/popular", "/tv/top_rated":
		return paginate(u.shows(q, parsed.Path), page), nil
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	switch {
	case len(segments) == 3 && segments[0] == "trending":
		return paginate(u.trending(segments[1]), page), nil
	case len(segments) == 2 && segments[0] == "movie":
		return u.movie(segments[1])
	case len(segments) == 2 && segments[0] == "tv":
		return u.show(segments[1])
	case len(segments) == 4 && segments[0] == "tv" && segments[2] == "season":
		return u.season(segments[1], segments[3])
	}
	return nil, ErrNotFound
}

func (u *FixtureUpstream) search(query string) []interface{} {
	query = strings.ToLower(strings.TrimSpace(query))
	items := make([]interface{}, 0)
	for _, m := range u.fixtures.Movies {
		if strings.Contains(strings.ToLower(m.Title), query) {
			m.MediaType = "movie"
			items = append(items, m)
		}
	}
	for _, s := range u.fixtures.Shows {
		if strings.Contains(strings.ToLower(s.Name), query) {
			s.MediaType = "tv"
			items = append(items, s)
		}
	}
	return items
}

func (u *FixtureUpstream) movies(q url.Values, path string) []interface{} {
	genre := atoiDefault(q.Get("with_genres"), 0)
	year := q.Get("primary_release_year")

	list := append([]Movie(nil), u.fixtures.Movies...)
	switch {
	case path == "/movie/top_rated" || q.Get("sort_by") == "vote_average.desc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].VoteAverage > list[j].VoteAverage })
	case path == "/movie/upcoming" || path == "/movie/now_playing":
		sort.SliceStable(list, func(i, j int) bool { return list[i].ReleaseDate > list[j].ReleaseDate })
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Popularity > list[j].Popularity })
	}

	items := make([]interface{}, 0, len(list))
	for _, m := range list {
		if genre != 0 && !containsInt(m.GenreIDs, genre) {
			continue
		}
		if year != "" && !strings.HasPrefix(m.ReleaseDate, year) {
			continue
		}
		items = append(items, m)
	}
	return items
}

func (u *FixtureUpstream) shows(q url.Values, path string) []interface{} {
	genre := atoiDefault(q.Get("with_genres"), 0)

	list := append([]Show(nil), u.fixtures.Shows...)
	if path == "/tv/top_rated" || q.Get("sort_by") == "vote_average.desc" {
		sort.SliceStable(list, func(i, j int) bool { return list[i].VoteAverage > list[j].VoteAverage })
	} else {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Popularity > list[j].Popularity })
	}

	items := make([]interface{}, 0, len(list))
	for _, s := range list {
		if genre != 0 && !containsInt(s.GenreIDs, genre) {
			continue
		}
		items = append(items, s)
	}
	return items
}

func (u *FixtureUpstream) trending(mediaType string) []interface{} {
	items := make([]interface{}, 0)
	if mediaType == "all" || mediaType == "movie" {
		for _, m := range u.fixtures.Movies {
			m.MediaType = "movie"
			items = append(items, m)
		}
	}
	if mediaType == "all" || mediaType == "tv" {
		for _, s := range u.fixtures.Shows {
			s.MediaType = "tv"
			items = append(items, s)
		}
	}
	return items
}

func (u *FixtureUpstream) movie(id string) (interface{}, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, ErrNotFound
	}
	for _, m := range u.fixtures.Movies {
		if m.ID == n {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func (u *FixtureUpstream) findShow(id string) (Show, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return Show{}, false
	}
	for _, s := range u.fixtures.Shows {
		if s.ID == n {
			return s, true
		}
	}
	return Show{}, false
}

func (u *FixtureUpstream) show(id string) (interface{}, error) {
	s, ok := u.findShow(id)
	if !ok {
		return nil, ErrNotFound
	}
	return map[string]interface{}{
		"id":                s.ID,
		"name":              s.Name,
		"overview":          s.Overview,
		"first_air_date":    s.FirstAirDate,
		"genre_ids":         s.GenreIDs,
		"vote_average":      s.VoteAverage,
		"number_of_seasons": len(s.Seasons),
		"popularity":        s.Popularity,
	}, nil
}

func (u *FixtureUpstream) season(id, number string) (interface{}, error) {
	s, ok := u.findShow(id)
	if !ok {
		return nil, ErrNotFound
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return nil, ErrNotFound
	}
	for _, season := range s.Seasons {
		if season.SeasonNumber == n {
			return season, nil
		}
	}
	return nil, ErrNotFound
}

func paginate(items []interface{}, page int) Page {
	if page < 1 {
		page = 1
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	p := Page{Page: page, Results: make([]interface{}, 0), TotalPages: totalPages, TotalResults: len(items)}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return p
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	p.Results = append(p.Results, items[start:end]...)
	return p
}

func atoiDefault(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
