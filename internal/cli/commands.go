package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/careerbridge-backend/internal/app"
	"github.com/yungbote/careerbridge-backend/internal/platform/envutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			if envutil.Bool("AUTO_MIGRATE", true) {
				if err := a.Migrate(); err != nil {
					return fmt.Errorf("postgres automigrate: %w", err)
				}
			}
			return a.Serve(ctx)
		})
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Temporal worker for the weekly reminder sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{Temporal: true}, func(ctx context.Context, a *app.App) error {
			return a.RunWorker(ctx)
		})
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder sweep inline and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			sum, err := a.RemindOnce(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(app.Options{}, func(ctx context.Context, a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		})
	},
}
