package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"device-telemetry/internal/config"
	"device-telemetry/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Device telemetry ingestion and query service",
	Long: `telemetry subscribes to sensor readings published by devices, validates
them and stores accepted events in Postgres. Rejected payloads are appended to
an invalid-message log. A separate read-only HTTP service exposes devices and
their event history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		slog.SetDefault(logging.New(os.Stdout, logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		}))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/telemetry/config.yaml)")
	rootCmd.AddCommand(ingestCmd, serveCmd, migrateCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			slog.InfoContext(ctx, "Received signal, shutting down...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}
