package mockgateway

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (g *Gateway) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           g,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	go g.janitor(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// janitor purges expired cache entries once per TTL
func (g *Gateway) janitor(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.CacheTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := g.cache.purge()
			g.logger.Debug("cache purged", "entries", remaining)
		}
	}
}
