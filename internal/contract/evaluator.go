package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"time"

	"tmdb-api-tester/internal/executor"
	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/types"
)

// Defaults for timing contracts that do not carry their own policy
const (
	DefaultCacheRatio   = 0.5
	DefaultCacheSamples = 2
	DefaultOrigin       = "https://contract-tester.local"
)

// cacheHeaders are reported with timing results when the gateway sends them
var cacheHeaders = []string{"Cache-Control", "ETag", "Age", "Last-Modified", "Expires", "X-Cache"}

// Doer performs one HTTP call and always returns an outcome
type Doer interface {
	Do(ctx context.Context, r executor.Request) types.RequestOutcome
}

// Options tunes evaluation
type Options struct {
	CacheRatio   float64
	CacheSamples int
	// Origin is sent with CORS preflight requests
	Origin string
}

// Evaluator turns a contract and the outcomes of its calls into exactly one TestResult
type Evaluator struct {
	doer   Doer
	opts   Options
	logger *slog.Logger
}

// NewEvaluator creates an evaluator issuing calls through doer
func NewEvaluator(doer Doer, opts Options, log *slog.Logger) *Evaluator {
	if opts.CacheRatio <= 0 {
		opts.CacheRatio = DefaultCacheRatio
	}
	if opts.CacheSamples < 2 {
		opts.CacheSamples = DefaultCacheSamples
	}
	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Evaluator{doer: doer, opts: opts, logger: log}
}

// Evaluate executes c and judges it. It never panics and never returns an error:
// every problem becomes a failing result.
func (e *Evaluator) Evaluate(ctx context.Context, c types.EndpointContract) (result types.TestResult) {
	start := time.Now()
	kind := c.ResolvedKind()

	defer func() {
		if r := recover(); r != nil {
			result = failure(types.FailureContract, fmt.Sprintf("contract could not be evaluated: %v", r), nil)
		}
		result.Name = c.Name
		result.Kind = kind
		result.Elapsed = time.Since(start)
		e.logger.Info("contract evaluated",
			"name", result.Name,
			"kind", result.Kind,
			"status", result.Status(),
			"message", result.Message,
		)
	}()

	switch kind {
	case types.KindNegative:
		return e.evaluateNegative(ctx, c)
	case types.KindTiming:
		return e.evaluateTiming(ctx, c)
	case types.KindCORS:
		return e.evaluateCORS(ctx, c)
	default:
		return e.evaluateShape(ctx, c)
	}
}

func (e *Evaluator) evaluateShape(ctx context.Context, c types.EndpointContract) types.TestResult {
	o := e.doer.Do(ctx, request(c))
	if kind, msg := judge(c, o); kind != "" {
		return failure(kind, msg, outcomeDetails(o))
	}
	return success(describe(o), map[string]interface{}{"status": o.StatusCode})
}

func (e *Evaluator) evaluateNegative(ctx context.Context, c types.EndpointContract) types.TestResult {
	o := e.doer.Do(ctx, request(c))
	nominal := c.Expected()

	if o.Failed() {
		if len(c.FailureStatus) == 0 {
			return success("request failed as expected: "+o.TransportError, outcomeDetails(o))
		}
		return failure(types.FailureTransport,
			fmt.Sprintf("request failed, expected status %v: %s", c.FailureStatus, o.TransportError),
			outcomeDetails(o))
	}

	if containsStatus(nominal, o.StatusCode) {
		msg := fmt.Sprintf("unexpected %d, expected a failure status", o.StatusCode)
		if len(c.FailureStatus) > 0 {
			msg = fmt.Sprintf("unexpected %d, expected %v", o.StatusCode, c.FailureStatus)
		}
		return failure(types.FailureContract, msg, outcomeDetails(o))
	}

	if len(c.FailureStatus) > 0 && !containsStatus(c.FailureStatus, o.StatusCode) {
		return failure(types.FailureContract,
			fmt.Sprintf("unexpected %d, expected %v", o.StatusCode, c.FailureStatus),
			outcomeDetails(o))
	}

	if c.Shape != nil {
		if err := CheckShape(c.Shape, o.Body); err != nil {
			return failure(types.FailureContract, "error body shape mismatch: "+err.Error(), outcomeDetails(o))
		}
	}

	return success(fmt.Sprintf("correctly returned %d", o.StatusCode), map[string]interface{}{"status": o.StatusCode})
}

func (e *Evaluator) evaluateTiming(ctx context.Context, c types.EndpointContract) types.TestResult {
	ratio, samples, consistent := e.timingPolicy(c)

	outcomes := make([]types.RequestOutcome, 0, samples)
	for i := 0; i < samples; i++ {
		o := e.doer.Do(ctx, request(c))
		if kind, msg := judge(c, o); kind != "" {
			return failure(kind,
				fmt.Sprintf("cannot measure caching, sample %d of %d failed: %s", i+1, samples, msg),
				outcomeDetails(o))
		}
		outcomes = append(outcomes, o)
	}

	cold := outcomes[0].Elapsed
	warm := median(outcomes[1:])

	sampleMillis := make([]float64, len(outcomes))
	for i, o := range outcomes {
		sampleMillis[i] = millis(o.Elapsed)
	}
	details := map[string]interface{}{
		"samples_ms": sampleMillis,
		"cold_ms":    millis(cold),
		"warm_ms":    millis(warm),
		"ratio":      ratio,
	}
	if h := presentHeaders(outcomes[len(outcomes)-1].Header, cacheHeaders); len(h) > 0 {
		details["cache_headers"] = h
	}

	if consistent {
		for i := 1; i < len(outcomes); i++ {
			if !reflect.DeepEqual(outcomes[0].Body, outcomes[i].Body) {
				return failure(types.FailureAdvisory,
					fmt.Sprintf("responses differ between sample 1 and sample %d, caching may not be working", i+1),
					details)
			}
		}
	}

	timings := fmt.Sprintf("cold: %s, warm: %s", round(cold), round(warm))
	if float64(warm) < float64(cold)*ratio {
		return success("caching appears to be working ("+timings+")", details)
	}
	return failure(types.FailureAdvisory,
		fmt.Sprintf("caching may not be working (%s, threshold ratio %g)", timings, ratio),
		details)
}

func (e *Evaluator) evaluateCORS(ctx context.Context, c types.EndpointContract) types.TestResult {
	req := request(c)
	req.Headers = map[string]string{
		"Origin":                         e.opts.Origin,
		"Access-Control-Request-Method":  http.MethodGet,
		"Access-Control-Request-Headers": "Content-Type",
	}

	o := e.doer.Do(ctx, req)
	if o.Failed() {
		return failure(types.FailureTransport, "preflight request failed: "+o.TransportError, outcomeDetails(o))
	}

	headers := map[string]interface{}{
		"Access-Control-Allow-Origin":  o.Header.Get("Access-Control-Allow-Origin"),
		"Access-Control-Allow-Methods": o.Header.Get("Access-Control-Allow-Methods"),
		"Access-Control-Allow-Headers": o.Header.Get("Access-Control-Allow-Headers"),
		"status":                       o.StatusCode,
	}
	if o.Header.Get("Access-Control-Allow-Origin") == "" {
		return failure(types.FailureContract, "CORS headers missing", headers)
	}
	return success("CORS headers properly configured", headers)
}

func (e *Evaluator) timingPolicy(c types.EndpointContract) (ratio float64, samples int, consistent bool) {
	ratio, samples = e.opts.CacheRatio, e.opts.CacheSamples
	if p := c.Timing; p != nil {
		if p.Ratio > 0 {
			ratio = p.Ratio
		}
		if p.Samples >= 2 {
			samples = p.Samples
		}
		consistent = p.Consistent
	}
	return ratio, samples, consistent
}

// judge classifies an outcome against the contract's status set and shape.
// An empty kind means the outcome satisfies the contract.
func judge(c types.EndpointContract, o types.RequestOutcome) (types.FailureKind, string) {
	if o.Failed() {
		return types.FailureTransport, "request failed: " + o.TransportError
	}
	if expected := c.Expected(); !containsStatus(expected, o.StatusCode) {
		return types.FailureContract, fmt.Sprintf("unexpected status %d, expected %v", o.StatusCode, expected)
	}
	if o.DecodeError {
		return types.FailureDecode, "response is not valid JSON"
	}
	if err := CheckShape(c.Shape, o.Body); err != nil {
		return types.FailureContract, "response shape mismatch: " + err.Error()
	}
	return "", ""
}

func request(c types.EndpointContract) executor.Request {
	return executor.Request{
		Method:     c.HTTPMethod(),
		Path:       c.Path,
		PathParams: c.PathParams,
		Query:      c.Query,
	}
}

func success(message string, details map[string]interface{}) types.TestResult {
	return types.TestResult{Success: true, Message: message, Details: details}
}

func failure(kind types.FailureKind, message string, details map[string]interface{}) types.TestResult {
	return types.TestResult{Failure: kind, Message: message, Details: details}
}

// outcomeDetails captures what a reader needs to diagnose a failure
func outcomeDetails(o types.RequestOutcome) map[string]interface{} {
	details := map[string]interface{}{"status": o.StatusCode}
	if o.TransportError != "" {
		details["error"] = o.TransportError
	}
	if o.Body != nil {
		details["body"] = excerpt(o.Body)
	}
	return details
}

func excerpt(body interface{}) string {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return executor.Preview(string(data), executor.PreviewLength)
}

// describe summarizes a passing body the way a human tester would
func describe(o types.RequestOutcome) string {
	obj, ok := o.Body.(map[string]interface{})
	if !ok {
		return fmt.Sprintf("status %d", o.StatusCode)
	}
	if items, ok := obj["results"].([]interface{}); ok {
		return fmt.Sprintf("returned %d results", len(items))
	}
	if items, ok := obj["episodes"].([]interface{}); ok {
		return fmt.Sprintf("season details retrieved with %d episodes", len(items))
	}
	for _, key := range []string{"title", "name"} {
		if v, ok := obj[key].(string); ok {
			return fmt.Sprintf("details retrieved for %q", v)
		}
	}
	if v, ok := obj["message"].(string); ok {
		return fmt.Sprintf("API is responding: %s", v)
	}
	return fmt.Sprintf("status %d", o.StatusCode)
}

func presentHeaders(h http.Header, names []string) map[string]string {
	found := make(map[string]string)
	for _, name := range names {
		if v := h.Get(name); v != "" {
			found[name] = v
		}
	}
	return found
}

func containsStatus(set []int, code int) bool {
	for _, s := range set {
		if s == code {
			return true
		}
	}
	return false
}

func median(outcomes []types.RequestOutcome) time.Duration {
	d := make([]time.Duration, len(outcomes))
	for i, o := range outcomes {
		d[i] = o.Elapsed
	}
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	mid := len(d) / 2
	if len(d)%2 == 0 {
		return (d[mid-1] + d[mid]) / 2
	}
	return d[mid]
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func round(d time.Duration) time.Duration {
	if d < time.Millisecond {
		return d.Round(time.Microsecond)
	}
	return d.Round(time.Millisecond)
}
