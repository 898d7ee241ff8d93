package types

import (
	"net/http"
	"time"
)

// ContractKind selects how a contract is evaluated
type ContractKind string

const (
	KindShape    ContractKind = "shape"
	KindNegative ContractKind = "negative"
	KindTiming   ContractKind = "timing"
	KindCORS     ContractKind = "cors"
)

// Valid reports whether k is a known contract kind
func (k ContractKind) Valid() bool {
	switch k {
	case KindShape, KindNegative, KindTiming, KindCORS:
		return true
	}
	return false
}

// EndpointContract describes one API call to verify and what a correct answer looks like
type EndpointContract struct {
	Name           string            `yaml:"name" json:"name"`
	Kind           ContractKind      `yaml:"kind,omitempty" json:"kind,omitempty"`
	Method         string            `yaml:"method,omitempty" json:"method,omitempty"`
	Path           string            `yaml:"path" json:"path"`
	PathParams     map[string]string `yaml:"path_params,omitempty" json:"path_params,omitempty"`
	Query          map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	ExpectedStatus []int             `yaml:"expected_status,omitempty" json:"expected_status,omitempty"`
	ExpectFailure  bool              `yaml:"expect_failure,omitempty" json:"expect_failure,omitempty"`
	FailureStatus  []int             `yaml:"failure_status,omitempty" json:"failure_status,omitempty"`
	Shape          *Shape            `yaml:"shape,omitempty" json:"shape,omitempty"`
	Timing         *TimingPolicy     `yaml:"timing,omitempty" json:"timing,omitempty"`
	Tags           []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Shape is a declarative predicate over a decoded JSON body.
// Keys, Arrays and NonEmpty imply Object. AnyOf passes when at least one alternative holds.
type Shape struct {
	Object     bool     `yaml:"object,omitempty" json:"object,omitempty"`
	Keys       []string `yaml:"keys,omitempty" json:"keys,omitempty"`
	Arrays     []string `yaml:"arrays,omitempty" json:"arrays,omitempty"`
	NonEmpty   []string `yaml:"non_empty,omitempty" json:"non_empty,omitempty"`
	AnyOf      []Shape  `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	JSONSchema string   `yaml:"json_schema,omitempty" json:"json_schema,omitempty"`
}

// TimingPolicy configures the cold/warm comparison of a timing contract
type TimingPolicy struct {
	Ratio      float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	Samples    int     `yaml:"samples,omitempty" json:"samples,omitempty"`
	Consistent bool    `yaml:"consistent,omitempty" json:"consistent,omitempty"`
}

// ResolvedKind returns the contract kind, treating an ExpectFailure shape contract as negative
func (c EndpointContract) ResolvedKind() ContractKind {
	switch {
	case c.Kind != "" && c.Kind != KindShape:
		return c.Kind
	case c.ExpectFailure:
		return KindNegative
	default:
		return KindShape
	}
}

// HTTPMethod returns the request method, OPTIONS for preflight contracts and GET otherwise
func (c EndpointContract) HTTPMethod() string {
	if c.Method != "" {
		return c.Method
	}
	if c.ResolvedKind() == KindCORS {
		return http.MethodOptions
	}
	return http.MethodGet
}

// Expected returns the nominal success statuses, {200} when unset
func (c EndpointContract) Expected() []int {
	if len(c.ExpectedStatus) == 0 {
		return []int{http.StatusOK}
	}
	return c.ExpectedStatus
}

// HasTag reports whether the contract carries tag
func (c EndpointContract) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RequestOutcome is the result of one HTTP call. StatusCode is 0 when the transport failed.
type RequestOutcome struct {
	StatusCode     int
	Body           interface{}
	Header         http.Header
	Elapsed        time.Duration
	TransportError string
	DecodeError    bool
}

// Failed reports whether the call never completed
func (o RequestOutcome) Failed() bool {
	return o.TransportError != ""
}

// FailureKind classifies why a contract failed
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureDecode    FailureKind = "decode"
	FailureContract  FailureKind = "contract"
	FailureAdvisory  FailureKind = "advisory"
)

// Result statuses as printed in reports
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusWarn = "WARN"
)

// TestResult is one evaluated contract
type TestResult struct {
	Name    string                 `json:"name"`
	Kind    ContractKind           `json:"kind"`
	Success bool                   `json:"success"`
	Failure FailureKind            `json:"failure,omitempty"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Elapsed time.Duration          `json:"elapsed"`
}

// Advisory reports whether the result is a soft failure
func (r TestResult) Advisory() bool {
	return !r.Success && r.Failure == FailureAdvisory
}

// Hard reports whether the result is a failure that indicates a defect
func (r TestResult) Hard() bool {
	return !r.Success && r.Failure != FailureAdvisory
}

// Status returns PASS, FAIL or WARN
func (r TestResult) Status() string {
	switch {
	case r.Success:
		return StatusPass
	case r.Advisory():
		return StatusWarn
	default:
		return StatusFail
	}
}

// RunSummary aggregates the results of a run
type RunSummary struct {
	Total      int          `json:"total"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	HardFailed int          `json:"hard_failed"`
	Advisory   int          `json:"advisory"`
	Failures   []TestResult `json:"failures,omitempty"`
}

// Summarize derives a RunSummary, keeping failures in run order
func Summarize(results []TestResult) RunSummary {
	s := RunSummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Passed++
			continue
		}
		s.Failed++
		if r.Advisory() {
			s.Advisory++
		} else {
			s.HardFailed++
		}
		s.Failures = append(s.Failures, r)
	}
	return s
}

// SuccessRate returns the percentage of passing results
func (s RunSummary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// OK is the process-level success signal. Advisory failures only count when strict is set.
func (s RunSummary) OK(strict bool) bool {
	if strict {
		return s.Passed == s.Total
	}
	return s.HardFailed == 0
}

// Operation is a GET operation discovered in an OpenAPI document
type Operation struct {
	Method     string
	Path       string
	Summary    string
	Parameters []Parameter
	Responses  map[int]Response
}

// Parameter represents an operation parameter
type Parameter struct {
	Name     string
	In       string
	Required bool
	Example  interface{}
}

// Response represents the documented shape of a response
type Response struct {
	Description string
	Required    []string
	Arrays      []string
}
