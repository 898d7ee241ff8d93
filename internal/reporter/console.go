package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"tmdb-api-tester/internal/types"
)

const rule = "=================================================="

// Console prints results as they complete and a summary at the end
type Console struct {
	w        io.Writer
	detailed bool

	pass *color.Color
	fail *color.Color
	warn *color.Color
	bold *color.Color
}

// NewConsole creates a console printer. A nil writer means stdout.
func NewConsole(w io.Writer, noColor, detailed bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	c := &Console{
		w:        w,
		detailed: detailed,
		pass:     color.New(color.FgGreen),
		fail:     color.New(color.FgRed, color.Bold),
		warn:     color.New(color.FgYellow),
		bold:     color.New(color.Bold),
	}
	if noColor {
		for _, col := range []*color.Color{c.pass, c.fail, c.warn, c.bold} {
			col.DisableColor()
		}
	}
	return c
}

// PrintHeader announces the run
func (c *Console) PrintHeader(baseURL string, contracts int) {
	c.bold.Fprintf(c.w, "Testing %s (%d contracts)\n", baseURL, contracts)
	fmt.Fprintln(c.w, rule)
}

// PrintResult prints one result line, with details for anything that did not pass
func (c *Console) PrintResult(r types.TestResult) {
	fmt.Fprintf(c.w, "%s %s - %s\n", c.tag(r), r.Name, r.Message)
	if r.Success && !c.detailed {
		return
	}
	for _, line := range detailLines(r.Details) {
		fmt.Fprintf(c.w, "    %s\n", line)
	}
}

// PrintSummary prints the totals and lists every failure in run order
func (c *Console) PrintSummary(s types.RunSummary, elapsed time.Duration) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, rule)
	c.bold.Fprintln(c.w, "Test Summary")
	fmt.Fprintln(c.w, rule)
	fmt.Fprintf(c.w, "Total:        %d\n", s.Total)
	fmt.Fprintf(c.w, "Passed:       %d\n", s.Passed)
	fmt.Fprintf(c.w, "Failed:       %d\n", s.Failed)
	fmt.Fprintf(c.w, "Advisory:     %d\n", s.Advisory)
	fmt.Fprintf(c.w, "Success rate: %.1f%%\n", s.SuccessRate())
	fmt.Fprintf(c.w, "Duration:     %s\n", elapsed.Round(time.Millisecond))

	fmt.Fprintln(c.w)
	if len(s.Failures) == 0 {
		c.pass.Fprintln(c.w, "All contracts passed")
		return
	}
	fmt.Fprintln(c.w, "Failures:")
	for _, r := range s.Failures {
		fmt.Fprintf(c.w, "  %s %s - %s\n", c.tag(r), r.Name, r.Message)
	}
}

func (c *Console) tag(r types.TestResult) string {
	status := "[" + r.Status() + "]"
	switch r.Status() {
	case types.StatusPass:
		return c.pass.Sprint(status)
	case types.StatusWarn:
		return c.warn.Sprint(status)
	default:
		return c.fail.Sprint(status)
	}
}

// detailLines renders details as sorted "key: value" lines
func detailLines(details map[string]interface{}) []string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+formatValue(details[k]))
	}
	return lines
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(string(data))
}
