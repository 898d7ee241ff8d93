package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tmdb-api-tester/internal/archive"
	"tmdb-api-tester/internal/catalog"
	"tmdb-api-tester/internal/config"
	"tmdb-api-tester/internal/contract"
	"tmdb-api-tester/internal/executor"
	"tmdb-api-tester/internal/harness"
	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/reporter"
	"tmdb-api-tester/internal/types"
)

type runOptions struct {
	configPath     string
	baseURL        string
	catalog        string
	only           []string
	tags           []string
	timeout        int
	cacheRatio     float64
	cacheSamples   int
	strictAdvisory bool
	formats        []string
	outputDir      string
	noColor        bool
	detailed       bool
	archiveDriver  string
	archiveDSN     string
	verbose        bool
	logDir         string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the contract catalog against the gateway",
		Long: `Run every selected contract once, in catalog order, and report the results.

Flags override values from the config file. The base URL can also come from
TMDB_API_BASE_URL and a bearer token from TMDB_API_AUTH_TOKEN.

Exit codes:
  0 = every contract passed (advisory warnings allowed unless --strict-advisory)
  1 = at least one contract failed
  3 = fatal error (config, catalog or report could not be processed)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContracts(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, FlagConfig, "", "Config file (default: "+config.DefaultPath+" when present)")
	f.StringVar(&opts.baseURL, FlagBaseURL, "", "Gateway base URL, e.g. http://localhost:3000/api")
	f.StringVar(&opts.catalog, FlagCatalog, "", "YAML contract catalog (default: built-in catalog)")
	f.StringSliceVar(&opts.only, FlagOnly, nil, "Run only contracts whose name matches a glob (repeatable; comma-separated accepted)")
	f.StringSliceVar(&opts.tags, FlagTag, nil, "Run only contracts carrying a tag (repeatable; comma-separated accepted)")
	f.IntVar(&opts.timeout, FlagTimeout, 0, "Per-request timeout in seconds (default: 30)")
	f.Float64Var(&opts.cacheRatio, FlagCacheRatio, 0, "Warm/cold ratio below which caching passes (default: 0.5)")
	f.IntVar(&opts.cacheSamples, FlagCacheSamples, 0, "Calls per timing contract, at least 2 (default: 2)")
	f.BoolVar(&opts.strictAdvisory, FlagStrictAdvisory, false, "Treat advisory warnings as failures")
	f.StringSliceVar(&opts.formats, FlagFormat, nil, "Report formats: text|json|xlsx (default: text,json)")
	f.StringVar(&opts.outputDir, FlagOutputDir, "", "Directory for report files (default: reports)")
	f.BoolVar(&opts.noColor, FlagNoColor, false, "Disable colored console output")
	f.BoolVar(&opts.detailed, FlagDetailed, false, "Print details for passing contracts too")
	f.StringVar(&opts.archiveDriver, FlagArchiveDriver, "", "Archive runs to a database: postgres|mysql|sqlserver|sqlite3")
	f.StringVar(&opts.archiveDSN, FlagArchiveDSN, "", "Archive connection string")
	f.BoolVar(&opts.verbose, FlagVerbose, false, "Log every HTTP exchange to stderr")
	f.StringVar(&opts.logDir, FlagLogDir, "", "Directory for run log files")
	return cmd
}

// loadConfig reads the config file and applies the flags that were set explicitly
func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed(FlagBaseURL) {
		cfg.Environment.BaseURL = strings.TrimRight(opts.baseURL, "/")
	}
	if f.Changed(FlagCatalog) {
		cfg.Test.Catalog = opts.catalog
	}
	if f.Changed(FlagOnly) {
		cfg.Test.Only = opts.only
	}
	if f.Changed(FlagTag) {
		cfg.Test.Tags = opts.tags
	}
	if f.Changed(FlagTimeout) {
		cfg.Test.Timeout = opts.timeout
	}
	if f.Changed(FlagCacheRatio) {
		cfg.Test.Cache.Ratio = opts.cacheRatio
	}
	if f.Changed(FlagCacheSamples) {
		cfg.Test.Cache.Samples = opts.cacheSamples
	}
	if f.Changed(FlagStrictAdvisory) {
		cfg.Test.StrictAdvisory = opts.strictAdvisory
	}
	if f.Changed(FlagFormat) {
		cfg.Reporting.Format = opts.formats
	}
	if f.Changed(FlagOutputDir) {
		cfg.Reporting.OutputDir = opts.outputDir
	}
	if f.Changed(FlagNoColor) {
		cfg.Reporting.NoColor = opts.noColor
	}
	if f.Changed(FlagDetailed) {
		cfg.Reporting.Detailed = opts.detailed
	}
	if f.Changed(FlagArchiveDriver) {
		cfg.Archive.Driver = opts.archiveDriver
	}
	if f.Changed(FlagArchiveDSN) {
		cfg.Archive.DSN = opts.archiveDSN
	}
	if f.Changed(FlagVerbose) {
		cfg.Logging.Verbose = opts.verbose
	}
	if f.Changed(FlagLogDir) {
		cfg.Logging.Dir = opts.logDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runContracts(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fatal(err)
	}

	log, err := logger.NewLogger(logger.Options{
		Dir:     cfg.Logging.Dir,
		Verbose: cfg.Logging.Verbose,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return fatal(err)
	}
	defer log.Close()

	contracts, err := catalog.Load(cfg.Test.Catalog)
	if err != nil {
		return fatal(err)
	}
	contracts, err = catalog.Filter(contracts, cfg.Test.Only, cfg.Test.Tags)
	if err != nil {
		return fatal(err)
	}
	if len(contracts) == 0 {
		return fatal(fmt.Errorf("no contracts selected"))
	}

	exec := executor.NewExecutor(executor.Config{
		BaseURL: cfg.Environment.BaseURL,
		Timeout: cfg.RequestTimeout(),
		Headers: cfg.Headers(),
	}, log.Logger)
	eval := contract.NewEvaluator(exec, contract.Options{
		CacheRatio:   cfg.Test.Cache.Ratio,
		CacheSamples: cfg.Test.Cache.Samples,
	}, log.Logger)

	hopts := []harness.Option{
		harness.WithBaseURL(cfg.Environment.BaseURL),
		harness.WithLogger(log.Logger),
	}
	var console *reporter.Console
	if cfg.HasFormat(config.FormatText) {
		console = reporter.NewConsole(cmd.OutOrStdout(), cfg.Reporting.NoColor, cfg.Reporting.Detailed)
		console.PrintHeader(cfg.Environment.BaseURL, len(contracts))
		hopts = append(hopts, harness.WithObserver(console.PrintResult))
	}

	run := harness.New(contracts, eval, hopts...).Run(cmd.Context())
	summary := run.Summary()
	if console != nil {
		console.PrintSummary(summary, run.Duration)
	}

	paths, err := reporter.NewReporter(reporter.ReportingConfig{
		Format:    cfg.Reporting.Format,
		OutputDir: cfg.Reporting.OutputDir,
		Detailed:  cfg.Reporting.Detailed,
	}).GenerateReport(run)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", p)
	}
	if err != nil {
		return fatal(err)
	}

	if cfg.Archive.Driver != "" {
		archiveRun(cmd, cfg.Archive, run, log)
	}

	if !summary.OK(cfg.Test.StrictAdvisory) {
		return &ExitError{Code: ExitFailures, Err: failureError(summary, cfg.Test.StrictAdvisory)}
	}
	return nil
}

// archiveRun stores the run; archive problems are reported and never change the outcome
func archiveRun(cmd *cobra.Command, cfg config.ArchiveConfig, run *harness.Run, log *logger.Logger) {
	a, err := archive.Open(cmd.Context(), archive.Config{
		Driver:   cfg.Driver,
		DSN:      cfg.DSN,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
	}, log.Logger)
	if err != nil {
		log.Warn("archive unavailable", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run not archived: %v\n", err)
		return
	}
	defer a.Close()

	if err := a.Save(cmd.Context(), run); err != nil {
		log.Warn("archive failed", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: run not archived: %v\n", err)
	}
}

func failureError(s types.RunSummary, strict bool) error {
	if strict && s.HardFailed == 0 {
		return fmt.Errorf("%d advisory warning(s) with --strict-advisory", s.Advisory)
	}
	return fmt.Errorf("%d of %d contracts failed", s.HardFailed, s.Total)
}
