package cmd

import (
	"log/slog"

	"device-telemetry/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		store, err := db.Init(ctx, dbConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		slog.InfoContext(ctx, "Database schema is up to date")
		return nil
	},
}

func dbConfig() db.Config {
	return db.Config{
		ConnString:     cfg.Database.URL,
		MigrationsPath: cfg.Database.MigrationsPath,
		MaxConns:       cfg.Database.MaxConns,
	}
}
