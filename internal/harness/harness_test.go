package harness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmdb-api-tester/internal/catalog"
	"tmdb-api-tester/internal/contract"
	"tmdb-api-tester/internal/executor"
	"tmdb-api-tester/internal/mockgateway"
	"tmdb-api-tester/internal/types"
)

type scriptedEvaluator struct {
	results map[string]types.TestResult
	seen    []string
}

func (s *scriptedEvaluator) Evaluate(_ context.Context, c types.EndpointContract) types.TestResult {
	s.seen = append(s.seen, c.Name)
	if r, ok := s.results[c.Name]; ok {
		return r
	}
	return types.TestResult{Name: c.Name, Success: true}
}

func TestRunOrderAndObserver(t *testing.T) {
	contracts := []types.EndpointContract{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	eval := &scriptedEvaluator{results: map[string]types.TestResult{
		"b": {Failure: types.FailureContract, Message: "boom"},
		"c": {Name: "c", Failure: types.FailureAdvisory},
	}}

	var observed []string
	h := New(contracts, eval,
		WithBaseURL("http://gateway/api"),
		WithObserver(func(r types.TestResult) { observed = append(observed, r.Status()) }),
	)
	run := h.Run(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, eval.seen)
	assert.Equal(t, []string{types.StatusPass, types.StatusFail, types.StatusWarn}, observed)
	require.Len(t, run.Results, 3)
	assert.Equal(t, "b", run.Results[1].Name)
	assert.Equal(t, "http://gateway/api", run.BaseURL)
	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err)

	s := run.Summary()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.HardFailed)
	assert.Equal(t, 1, s.Advisory)
	assert.False(t, s.OK(false))
}

func TestRunEmptyCatalog(t *testing.T) {
	run := New(nil, &scriptedEvaluator{}).Run(context.Background())
	assert.Empty(t, run.Results)
	assert.Equal(t, 0, run.Summary().Total)
}

func newEvaluator(baseURL string) *contract.Evaluator {
	exec := executor.NewExecutor(executor.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, nil)
	return contract.NewEvaluator(exec, contract.Options{}, nil)
}

func TestDefaultCatalogAgainstMockGateway(t *testing.T) {
	upstream := mockgateway.NewFixtureUpstream(mockgateway.DefaultFixtures(), 40*time.Millisecond)
	srv := httptest.NewServer(mockgateway.New(upstream, mockgateway.Config{}, nil))
	defer srv.Close()

	contracts := catalog.Default()
	run := New(contracts, newEvaluator(srv.URL+"/api")).Run(context.Background())

	require.Len(t, run.Results, len(contracts))
	for i, r := range run.Results {
		assert.Equal(t, contracts[i].Name, r.Name)
		assert.True(t, r.Success, "%s: %s %v", r.Name, r.Message, r.Details)
	}
	s := run.Summary()
	assert.Equal(t, s.Total, s.Passed+s.Failed)
	assert.True(t, s.OK(true))
}

func TestBrokenGatewayFailsEveryPositiveContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	contracts := catalog.Default()
	run := New(contracts, newEvaluator(srv.URL)).Run(context.Background())

	require.Len(t, run.Results, len(contracts))
	for i, r := range run.Results {
		switch contracts[i].ResolvedKind() {
		case types.KindShape, types.KindTiming:
			assert.True(t, r.Hard(), r.Name)
		}
	}
	assert.False(t, run.Summary().OK(false))
}

func TestUnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	contracts := []types.EndpointContract{
		{Name: "Health Check", Path: "/"},
		{Name: "Invalid", Kind: types.KindNegative, ExpectFailure: true, Path: "/x"},
		{Name: "Invalid 404", Kind: types.KindNegative, ExpectFailure: true, FailureStatus: []int{404}, Path: "/x"},
	}
	run := New(contracts, newEvaluator(baseURL)).Run(context.Background())

	require.Len(t, run.Results, 3)
	assert.Equal(t, types.FailureTransport, run.Results[0].Failure)
	assert.True(t, run.Results[1].Success)
	assert.Equal(t, types.FailureTransport, run.Results[2].Failure)
}
