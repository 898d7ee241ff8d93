package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitFatal    = 3
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func fatal(err error) error {
	return &ExitError{Code: ExitFatal, Err: err}
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tmdb-api-tester",
		Short: "Verify a TMDB media gateway against a catalog of endpoint contracts",
		Long: `tmdb-api-tester issues real HTTP calls against a running media gateway and
checks every response against a declarative contract: status codes, body shape,
failure handling, CORS preflight and response caching.

Examples:
  # Run the built-in catalog against a local gateway
  tmdb-api-tester run --base-url http://localhost:3000/api

  # Run only the caching contracts and treat warnings as failures
  tmdb-api-tester run --tag cache --strict-advisory

  # Print the catalog
  tmdb-api-tester list

  # Generate a catalog from the gateway's OpenAPI document
  tmdb-api-tester scaffold --openapi-url http://localhost:3000/api --output config/catalog.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newScaffoldCmd())
	root.AddCommand(newVersionCmd())

	root.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	root.SetVersionTemplate("{{.Version}}\n")
	return root
}

// SetBuildInfo records values injected through -ldflags
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

// BuildInfo returns the recorded build values
func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// Execute runs the command tree and exits with its code
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}
