package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/types"
)

// wellKnownPaths are tried in order when the document URL is not given directly
var wellKnownPaths = []string{
	"/openapi.json",
	"/swagger.json",
	"/swagger/v1/swagger.json",
	"/v1/swagger.json",
	"/api/swagger.json",
	"/docs/openapi.json",
	"/openapi.yaml",
}

// SwaggerParser fetches an OpenAPI document and extracts its GET operations
type SwaggerParser struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	doc     *openapi3.T
}

// NewSwaggerParser creates a new instance of SwaggerParser. baseURL is either the
// document URL itself (ending in .json, .yaml or .yml) or a root to probe.
func NewSwaggerParser(baseURL string, timeout time.Duration, log *slog.Logger) *SwaggerParser {
	if log == nil {
		log = logger.Discard()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SwaggerParser{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// ParseOperations fetches the OpenAPI document and returns its GET operations sorted by path
func (p *SwaggerParser) ParseOperations(ctx context.Context) ([]types.Operation, error) {
	var lastErr error
	for _, url := range p.candidates() {
		p.logger.Debug("fetching OpenAPI document", "url", url)
		doc, err := p.fetchOpenAPIDoc(ctx, url)
		if err == nil {
			p.logger.Info("fetched OpenAPI document", "url", url)
			p.doc = doc
			break
		}
		p.logger.Debug("OpenAPI fetch failed", "url", url, "error", err)
		lastErr = err
	}

	if p.doc == nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI documentation from %s: %w", p.baseURL, lastErr)
	}
	return p.extractOperations(), nil
}

func (p *SwaggerParser) candidates() []string {
	lower := strings.ToLower(p.baseURL)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(lower, ext) {
			return []string{p.baseURL}
		}
	}
	urls := make([]string, len(wellKnownPaths))
	for i, path := range wellKnownPaths {
		urls[i] = p.baseURL + path
	}
	return urls
}

// fetchOpenAPIDoc fetches the OpenAPI documentation from the given URL
func (p *SwaggerParser) fetchOpenAPIDoc(ctx context.Context, url string) (*openapi3.T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	return doc, nil
}

// extractOperations collects GET operations from the loaded document
func (p *SwaggerParser) extractOperations() []types.Operation {
	paths := p.doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	var ops []types.Operation
	for _, path := range keys {
		item := paths[path]
		if item == nil || item.Get == nil {
			continue
		}
		operation := item.Get

		op := types.Operation{
			Method:    http.MethodGet,
			Path:      path,
			Summary:   operation.Summary,
			Responses: make(map[int]types.Response),
		}

		params := append(openapi3.Parameters{}, item.Parameters...)
		params = append(params, operation.Parameters...)
		for _, ref := range params {
			if ref == nil || ref.Value == nil {
				continue
			}
			op.Parameters = append(op.Parameters, types.Parameter{
				Name:     ref.Value.Name,
				In:       ref.Value.In,
				Required: ref.Value.Required,
				Example:  sampleValue(ref.Value),
			})
		}

		if operation.Responses != nil {
			for status, ref := range operation.Responses.Map() {
				code, err := strconv.Atoi(status)
				if err != nil || ref == nil || ref.Value == nil {
					continue
				}
				op.Responses[code] = describeResponse(ref.Value)
			}
		}

		ops = append(ops, op)
	}
	return ops
}

func describeResponse(r *openapi3.Response) types.Response {
	resp := types.Response{}
	if r.Description != nil {
		resp.Description = *r.Description
	}

	media := r.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return resp
	}
	schema := media.Schema.Value
	resp.Required = append(resp.Required, schema.Required...)
	sort.Strings(resp.Required)

	for name, prop := range schema.Properties {
		if prop != nil && prop.Value != nil && prop.Value.Type != nil && prop.Value.Type.Is("array") {
			resp.Arrays = append(resp.Arrays, name)
		}
	}
	sort.Strings(resp.Arrays)
	return resp
}

// sampleValue picks a value for a path or query parameter: the documented example,
// default or first enum value, and otherwise a placeholder of the right type
func sampleValue(param *openapi3.Parameter) interface{} {
	if param.Example != nil {
		return param.Example
	}
	if param.Schema == nil || param.Schema.Value == nil {
		return "sample_string"
	}

	schema := param.Schema.Value
	switch {
	case schema.Example != nil:
		return schema.Example
	case schema.Default != nil:
		return schema.Default
	case len(schema.Enum) > 0:
		return schema.Enum[0]
	}

	if schema.Type == nil {
		return "sample_string"
	}
	switch {
	case schema.Type.Is("integer"):
		return 1
	case schema.Type.Is("number"):
		return 1.5
	case schema.Type.Is("boolean"):
		return true
	}

	switch schema.Format {
	case "date":
		return "2024-01-01"
	case "date-time":
		return "2024-01-01T12:00:00Z"
	case "uuid":
		return "123e4567-e89b-12d3-a456-426614174000"
	}
	return "sample_string"
}
