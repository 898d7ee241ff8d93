package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tmdb-api-tester/internal/harness"
	"tmdb-api-tester/internal/types"
)

// Report formats written to files
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	// FormatText is the console report and produces no file
	FormatText = "text"
)

const timestampFormat = "20060102_150405"

// Report is the JSON document written for a run
type Report struct {
	RunID       string         `json:"run_id"`
	BaseURL     string         `json:"base_url"`
	Timestamp   time.Time      `json:"timestamp"`
	Duration    time.Duration  `json:"duration"`
	Total       int            `json:"total"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	HardFailed  int            `json:"hard_failed"`
	Advisory    int            `json:"advisory"`
	SuccessRate float64        `json:"success_rate"`
	Results     []ResultRecord `json:"results"`
}

// ResultRecord is one result as it appears in report files
type ResultRecord struct {
	Name      string                 `json:"name"`
	Kind      types.ContractKind     `json:"kind"`
	Status    string                 `json:"status"`
	Failure   types.FailureKind      `json:"failure,omitempty"`
	Message   string                 `json:"message"`
	ElapsedMS float64                `json:"elapsed_ms"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Reporter writes report files for a finished run
type Reporter struct {
	config ReportingConfig
	now    func() time.Time
}

// ReportingConfig holds the configuration for reporting
type ReportingConfig struct {
	Format    []string
	OutputDir string
	Detailed  bool
}

// NewReporter creates a new instance of Reporter
func NewReporter(config ReportingConfig) *Reporter {
	return &Reporter{
		config: config,
		now:    time.Now,
	}
}

// GenerateReport writes one file per configured file format and returns their paths
func (r *Reporter) GenerateReport(run *harness.Run) ([]string, error) {
	report := newReport(run, r.now())

	var paths []string
	for _, format := range r.config.Format {
		var (
			path string
			err  error
		)
		switch format {
		case FormatText:
			continue
		case FormatJSON:
			path, err = r.generateJSONReport(report)
		case FormatXLSX:
			path, err = r.generateXLSXReport(report)
		default:
			return paths, fmt.Errorf("unsupported report format: %s", format)
		}
		if err != nil {
			return paths, fmt.Errorf("failed to generate %s report: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func newReport(run *harness.Run, now time.Time) Report {
	s := run.Summary()
	report := Report{
		RunID:       run.ID,
		BaseURL:     run.BaseURL,
		Timestamp:   now,
		Duration:    run.Duration,
		Total:       s.Total,
		Passed:      s.Passed,
		Failed:      s.Failed,
		HardFailed:  s.HardFailed,
		Advisory:    s.Advisory,
		SuccessRate: s.SuccessRate(),
		Results:     make([]ResultRecord, 0, len(run.Results)),
	}
	for _, res := range run.Results {
		report.Results = append(report.Results, ResultRecord{
			Name:      res.Name,
			Kind:      res.Kind,
			Status:    res.Status(),
			Failure:   res.Failure,
			Message:   res.Message,
			ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
			Details:   res.Details,
		})
	}
	return report
}

func (r *Reporter) reportPath(report Report, ext string) (string, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(r.config.OutputDir, fmt.Sprintf("report_%s.%s", report.Timestamp.Format(timestampFormat), ext)), nil
}

// generateJSONReport generates a JSON format report
func (r *Reporter) generateJSONReport(report Report) (string, error) {
	reportPath, err := r.reportPath(report, "json")
	if err != nil {
		return "", err
	}

	if !r.config.Detailed {
		for i := range report.Results {
			if report.Results[i].Status == types.StatusPass {
				report.Results[i].Details = nil
			}
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return reportPath, os.WriteFile(reportPath, data, 0644)
}
