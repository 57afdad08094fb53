package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"financetracker/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Create or update the database schema to the latest version.

The server and worker migrate on start-up; this is for preparing a
database ahead of a deploy or checking its state.`,
		Args: cobra.NoArgs,
		RunE: a.runMigrate,
	}
	cmd.Flags().Bool("status", false, "show the current schema version without applying changes")
	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	path := a.dbPath()

	if !status {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
		a.logger.Info("Applying migrations", "database", path)
		if err := storage.RunMigrations(path); err != nil {
			return fmt.Errorf("migrate %s: %w", path, err)
		}
	}

	version, dirty, err := storage.MigrationVersion(path)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(a.stdout, "schema version %d (%s)\n", version, state)
	return nil
}
