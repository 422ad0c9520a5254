package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/ritual/internal/config"
	"github.com/templui/ritual/internal/db"
)

func MigrateCmd() *cobra.Command {
	var down bool

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (or roll back the latest with --down)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, down)
		},
	}
	c.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration")
	return c
}

func runMigrate(cmd *cobra.Command, down bool) error {
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if down {
		err = db.MigrateDown(database.DB, cfg.DBDriver)
	} else {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "done")
	return nil
}
