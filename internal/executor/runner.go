package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/types"
)

const (
	// DefaultTimeout bounds a single call when Config.Timeout is unset
	DefaultTimeout = 30 * time.Second
	// PreviewLength is how many characters of an undecodable body are kept
	PreviewLength = 200

	defaultMaxBodyBytes = 10 << 20
)

// Request is one HTTP call against the gateway
type Request struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      map[string]string
	Headers    map[string]string
}

// Config holds configuration for request execution
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Headers are sent with every request; Request.Headers win on conflict
	Headers      map[string]string
	MaxBodyBytes int64
}

// Executor performs single HTTP calls and always returns an outcome.
// It holds one client that is reused across calls; calls are expected to be sequential.
type Executor struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewExecutor creates a new executor
func NewExecutor(config Config, log *slog.Logger) *Executor {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log,
	}
}

// BaseURL returns the gateway base URL requests are resolved against
func (e *Executor) BaseURL() string {
	return e.config.BaseURL
}

// Do executes r. Transport problems are reported in the outcome, never as an error.
func (e *Executor) Do(ctx context.Context, r Request) types.RequestOutcome {
	req, err := e.buildRequest(ctx, r)
	if err != nil {
		return types.RequestOutcome{TransportError: fmt.Sprintf("failed to build request: %v", err)}
	}
	return e.execute(req)
}

// URL resolves the full request URL for r
func (e *Executor) URL(r Request) string {
	path := r.Path
	for key, value := range r.PathParams {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target := e.config.BaseURL + path
	if len(r.Query) > 0 {
		query := url.Values{}
		for key, value := range r.Query {
			query.Set(key, value)
		}
		target += "?" + query.Encode()
	}
	return target
}

// buildRequest creates an HTTP request for r
func (e *Executor) buildRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, e.URL(r), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range e.config.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// execute runs req and folds the response into an outcome
func (e *Executor) execute(req *http.Request) types.RequestOutcome {
	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		outcome := types.RequestOutcome{
			Elapsed:        time.Since(start),
			TransportError: err.Error(),
		}
		e.log(req, outcome)
		return outcome
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.config.MaxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		outcome := types.RequestOutcome{
			Elapsed:        elapsed,
			TransportError: fmt.Sprintf("failed to read response body: %v", err),
		}
		e.log(req, outcome)
		return outcome
	}

	outcome := types.RequestOutcome{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Elapsed:    elapsed,
	}
	outcome.Body, outcome.DecodeError = decodeBody(body)
	e.log(req, outcome)
	return outcome
}

func (e *Executor) log(req *http.Request, o types.RequestOutcome) {
	attrs := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"status", o.StatusCode,
		"elapsed", o.Elapsed,
	}
	if o.TransportError != "" {
		attrs = append(attrs, "error", o.TransportError)
	}
	if o.DecodeError {
		attrs = append(attrs, "decode_error", true)
	}
	e.logger.Debug("http exchange", attrs...)
}

// decodeBody parses body as JSON. Undecodable bodies become a diagnostic object
// carrying a bounded preview of the raw text.
func decodeBody(body []byte) (interface{}, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	var decoded interface{}
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return map[string]interface{}{
			"error": "Invalid JSON response",
			"text":  Preview(string(body), PreviewLength),
		}, true
	}
	return decoded, false
}

// Preview returns at most n characters of s
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
