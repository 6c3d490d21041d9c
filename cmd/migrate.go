package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the candidate schema",
	Long: `Apply pending schema migrations to DATABASE_URL. Other commands migrate
on startup as well; this command is for provisioning ahead of time.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "Only list applied migrations")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()
	out := cmd.OutOrStdout()

	backend, err := backendFor(cfg.Database.URL)
	if err != nil {
		return err
	}
	store, err := backend.newStore(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", backend.name, err)
	}
	defer store.Close()

	if !mustGetBool(cmd, "status") {
		applied, err := store.Migrate(ctx, backend.migrations())
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if len(applied) == 0 {
			fmt.Fprintf(out, "Schema is up to date (%s)\n", backend.name)
		}
		for _, name := range applied {
			color.New(color.FgGreen).Fprintf(out, "Applied %s\n", name)
		}
	}

	versions, err := store.MigrationsApplied(ctx)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	fmt.Fprintf(out, "Applied migrations: %d\n", len(versions))
	for _, v := range versions {
		fmt.Fprintf(out, "  - %s\n", v)
	}
	return nil
}
