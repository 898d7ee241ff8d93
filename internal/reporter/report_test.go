package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tmdb-api-tester/internal/harness"
	"tmdb-api-tester/internal/types"
)

func sampleResults() []types.TestResult {
	return []types.TestResult{
		{Name: "Health Check", Kind: types.KindShape, Success: true, Message: "API is responding: TMDB Media API",
			Details: map[string]interface{}{"status": 200}, Elapsed: 12 * time.Millisecond},
		{Name: "Search - Valid Query", Kind: types.KindShape, Failure: types.FailureContract,
			Message: "unexpected status 500, expected [200]",
			Details: map[string]interface{}{"status": 500, "body": `{"error":"boom"}`}},
		{Name: "Caching Functionality", Kind: types.KindTiming, Failure: types.FailureAdvisory,
			Message: "caching may not be working (cold: 120ms, warm: 118ms, threshold ratio 0.5)"},
	}
}

func sampleRun() *harness.Run {
	return &harness.Run{
		ID:        "5f0c6a9e-3b1d-4c51-9c57-0a4f1d2c9b11",
		BaseURL:   "http://localhost:3000/api",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Results:   sampleResults(),
	}
}

func TestConsoleSummaryGolden(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true, false)
	c.PrintSummary(types.Summarize(sampleResults()), 1500*time.Millisecond)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "console_summary", buf.Bytes())
}

func TestConsoleAllPassed(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true, false)
	c.PrintSummary(types.Summarize(sampleResults()[:1]), time.Second)

	assert.Contains(t, buf.String(), "Success rate: 100.0%")
	assert.Contains(t, buf.String(), "All contracts passed")
	assert.NotContains(t, buf.String(), "Failures:")
}

func TestConsolePrintResult(t *testing.T) {
	results := sampleResults()

	tests := []struct {
		name     string
		detailed bool
		result   types.TestResult
		want     []string
		notWant  []string
	}{
		{
			name:    "pass hides details",
			result:  results[0],
			want:    []string{"[PASS] Health Check - API is responding: TMDB Media API"},
			notWant: []string{"status: 200"},
		},
		{
			name:     "pass shows details when detailed",
			detailed: true,
			result:   results[0],
			want:     []string{"[PASS] Health Check", "    status: 200"},
		},
		{
			name:   "failure shows sorted details",
			result: results[1],
			want:   []string{"[FAIL] Search - Valid Query - unexpected status 500", "    body: {\"error\":\"boom\"}\n    status: 500"},
		},
		{
			name:   "advisory is a warning",
			result: results[2],
			want:   []string{"[WARN] Caching Functionality - caching may not be working"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf, true, tt.detailed).PrintResult(tt.result)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func newTestReporter(t *testing.T, formats ...string) (*Reporter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "reports")
	r := NewReporter(ReportingConfig{Format: formats, OutputDir: dir})
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 2, 0, time.UTC) }
	return r, dir
}

func TestGenerateJSONReport(t *testing.T) {
	r, dir := newTestReporter(t, FormatText, FormatJSON)

	paths, err := r.GenerateReport(sampleRun())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "report_20260301_120002.json")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "5f0c6a9e-3b1d-4c51-9c57-0a4f1d2c9b11", report.RunID)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 1, report.HardFailed)
	assert.Equal(t, 1, report.Advisory)
	require.Len(t, report.Results, 3)
	assert.Equal(t, types.StatusWarn, report.Results[2].Status)
	assert.Nil(t, report.Results[0].Details)
	assert.Equal(t, float64(500), report.Results[1].Details["status"])
}

func TestGenerateXLSXReport(t *testing.T) {
	r, dir := newTestReporter(t, FormatXLSX)

	paths, err := r.GenerateReport(sampleRun())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "report_20260301_120002.xlsx")}, paths)

	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Search - Valid Query", name)

	status, err := f.GetCellValue(sheetName, "C4")
	require.NoError(t, err)
	assert.Equal(t, types.StatusWarn, status)

	passStyle, err := f.GetCellStyle(sheetName, "A2")
	require.NoError(t, err)
	failStyle, err := f.GetCellStyle(sheetName, "A3")
	require.NoError(t, err)
	warnStyle, err := f.GetCellStyle(sheetName, "A4")
	require.NoError(t, err)
	assert.Equal(t, 0, passStyle)
	assert.NotEqual(t, 0, failStyle)
	assert.NotEqual(t, 0, warnStyle)
	assert.NotEqual(t, failStyle, warnStyle)
}

func TestGenerateReportUnknownFormat(t *testing.T) {
	r, _ := newTestReporter(t, "html")
	_, err := r.GenerateReport(sampleRun())
	assert.ErrorContains(t, err, "unsupported report format: html")
}
