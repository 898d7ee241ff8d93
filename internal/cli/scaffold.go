package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tmdb-api-tester/internal/catalog"
	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/parser"
)

type scaffoldOptions struct {
	openAPIURL string
	output     string
	timeout    int
	verbose    bool
}

func newScaffoldCmd() *cobra.Command {
	opts := &scaffoldOptions{}
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate a catalog from the gateway's OpenAPI document",
		Long: `Fetch an OpenAPI document and write one shape contract per GET operation.

--openapi-url is either the document itself (ending in .json, .yaml or .yml)
or a base URL; well-known paths such as /openapi.json and /swagger.json are
tried in order. Path parameters and required query parameters get sample
values that should be reviewed before running.

Example:
  tmdb-api-tester scaffold --openapi-url http://localhost:3000/api --output config/catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewLogger(logger.Options{Verbose: opts.verbose, Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return fatal(err)
			}
			defer log.Close()

			p := parser.NewSwaggerParser(opts.openAPIURL, time.Duration(opts.timeout)*time.Second, log.Logger)
			ops, err := p.ParseOperations(cmd.Context())
			if err != nil {
				return fatal(err)
			}

			file := catalog.Scaffold(ops)
			if len(file.Contracts) == 0 {
				return fatal(fmt.Errorf("no GET operations found at %s", opts.openAPIURL))
			}
			if err := catalog.WriteFile(opts.output, file, opts.openAPIURL); err != nil {
				return fatal(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d contracts to %s\n", len(file.Contracts), opts.output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.openAPIURL, FlagOpenAPIURL, "", "OpenAPI document URL or base URL to probe")
	f.StringVar(&opts.output, FlagOutput, "config/catalog.yaml", "Catalog file to write")
	f.IntVar(&opts.timeout, FlagTimeout, 30, "HTTP timeout in seconds")
	f.BoolVar(&opts.verbose, FlagVerbose, false, "Log fetch attempts to stderr")
	_ = cmd.MarkFlagRequired(FlagOpenAPIURL)
	return cmd
}
