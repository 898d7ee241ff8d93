package harness

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/types"
)

// Evaluator judges one contract
type Evaluator interface {
	Evaluate(ctx context.Context, c types.EndpointContract) types.TestResult
}

// Run is one pass over a catalog
type Run struct {
	ID        string             `json:"id"`
	BaseURL   string             `json:"base_url"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
	Results   []types.TestResult `json:"results"`
}

// Summary derives the run's aggregate counts
func (r *Run) Summary() types.RunSummary {
	return types.Summarize(r.Results)
}

// Harness executes a catalog strictly in order
type Harness struct {
	contracts []types.EndpointContract
	evaluator Evaluator
	baseURL   string
	observer  func(types.TestResult)
	logger    *slog.Logger
}

// Option configures a Harness
type Option func(*Harness)

// WithObserver registers fn to be called after every result
func WithObserver(fn func(types.TestResult)) Option {
	return func(h *Harness) { h.observer = fn }
}

// WithBaseURL records the target in the run
func WithBaseURL(baseURL string) Option {
	return func(h *Harness) { h.baseURL = baseURL }
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(h *Harness) { h.logger = log }
}

// New creates a harness over contracts
func New(contracts []types.EndpointContract, evaluator Evaluator, opts ...Option) *Harness {
	h := &Harness{
		contracts: contracts,
		evaluator: evaluator,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Discard()
	}
	return h
}

// Run evaluates every contract once, in catalog order
func (h *Harness) Run(ctx context.Context) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		BaseURL:   h.baseURL,
		StartedAt: time.Now(),
		Results:   make([]types.TestResult, 0, len(h.contracts)),
	}
	h.logger.Info("run started", "run_id", run.ID, "base_url", run.BaseURL, "contracts", len(h.contracts))

	for _, c := range h.contracts {
		result := h.evaluator.Evaluate(ctx, c)
		if result.Name == "" {
			result.Name = c.Name
		}
		run.Results = append(run.Results, result)
		if h.observer != nil {
			h.observer(result)
		}
	}

	run.Duration = time.Since(run.StartedAt)
	summary := run.Summary()
	h.logger.Info("run finished",
		"run_id", run.ID,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"advisory", summary.Advisory,
		"duration", run.Duration,
	)
	return run
}
