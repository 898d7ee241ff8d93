package cli

// Flag names without leading dashes
const (
	FlagConfig         = "config"
	FlagBaseURL        = "base-url"
	FlagCatalog        = "catalog"
	FlagOnly           = "only"
	FlagTag            = "tag"
	FlagTimeout        = "timeout"
	FlagCacheRatio     = "cache-ratio"
	FlagCacheSamples   = "cache-samples"
	FlagStrictAdvisory = "strict-advisory"
	FlagFormat         = "format"
	FlagOutputDir      = "output-dir"
	FlagNoColor        = "no-color"
	FlagDetailed       = "detailed"
	FlagArchiveDriver  = "archive-driver"
	FlagArchiveDSN     = "archive-dsn"
	FlagVerbose        = "verbose"
	FlagLogDir         = "log-dir"
	FlagQuiet          = "quiet"
	FlagOpenAPIURL     = "openapi-url"
	FlagOutput         = "output"
)
