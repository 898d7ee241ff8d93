package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tmdb-api-tester/internal/logger"
	"tmdb-api-tester/internal/mockgateway"
)

func main() {
	var (
		port       int
		latency    time.Duration
		cacheTTL   time.Duration
		corsOrigin string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "gateway-mock",
		Short: "Serve a fixture-backed mock of the TMDB media gateway",
		Long: `gateway-mock serves the gateway routes under /api from an in-memory fixture
catalogue. Upstream fetches are delayed by --latency and cached for --cache-ttl,
so the caching contracts see a measurable cold/warm difference.

Example:
  gateway-mock --port 3000 --latency 300ms
  tmdb-api-tester run --base-url http://localhost:3000/api`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewLogger(logger.Options{Verbose: verbose, Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer log.Close()

			upstream := mockgateway.NewFixtureUpstream(mockgateway.DefaultFixtures(), latency)
			gw := mockgateway.New(upstream, mockgateway.Config{CacheTTL: cacheTTL, CORSOrigin: corsOrigin}, log.Logger)

			addr := fmt.Sprintf(":%d", port)
			fmt.Fprintf(cmd.OutOrStdout(), "mock gateway listening on %s (base URL http://localhost%s/api)\n", addr, addr)
			return gw.Serve(cmd.Context(), addr)
		},
	}

	f := cmd.Flags()
	f.IntVar(&port, "port", 3000, "Port to listen on")
	f.DurationVar(&latency, "latency", 300*time.Millisecond, "Simulated upstream latency per cache miss")
	f.DurationVar(&cacheTTL, "cache-ttl", mockgateway.DefaultCacheTTL, "How long upstream responses are cached")
	f.StringVar(&corsOrigin, "cors-origin", mockgateway.DefaultCORSOrigin, "Access-Control-Allow-Origin value")
	f.BoolVar(&verbose, "verbose", false, "Log every request to stderr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
