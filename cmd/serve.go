package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"device-telemetry/internal/api"
	"device-telemetry/internal/db"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		slog.InfoContext(ctx, "Starting query service...")
		store, err := db.Connect(ctx, dbConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      api.New(api.Config{DB: store}).Router(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}
		return serveHTTP(ctx, srv, cfg.Pipeline.ShutdownTimeout)
	},
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "Error shutting down HTTP server", "error", err)
		return err
	}
	slog.InfoContext(ctx, "HTTP server stopped")
	return nil
}
