package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-accounts-api/internal/config"
	"github.com/redmonkez12/go-accounts-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			provider, err := database.NewMigrator(db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch action {
			case "up":
				results, err := provider.Up(ctx)
				if err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				for _, r := range results {
					fmt.Fprintf(out, "applied %s (%s)\n", r.Source.Path, r.Duration.Round(time.Millisecond))
				}
				if len(results) == 0 {
					fmt.Fprintln(out, "no pending migrations")
				}
			case "down":
				result, err := provider.Down(ctx)
				if err != nil {
					return fmt.Errorf("failed to roll back migration: %w", err)
				}
				fmt.Fprintf(out, "rolled back %s\n", result.Source.Path)
			case "status":
				statuses, err := provider.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to read migration status: %w", err)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
				for _, s := range statuses {
					applied := "-"
					if !s.AppliedAt.IsZero() {
						applied = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
				}
				return tw.Flush()
			}

			return nil
		},
	}
}
