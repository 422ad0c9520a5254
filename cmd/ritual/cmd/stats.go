package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/ritual/internal/app"
	"github.com/templui/ritual/internal/config"
	"github.com/templui/ritual/internal/db"
	"github.com/templui/ritual/internal/stats"
)

func StatsCmd() *cobra.Command {
	var userID string

	c := &cobra.Command{
		Use:   "stats <goal-id>",
		Short: "Print the statistics summary of a goal as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close(database) }()

			a, err := app.Wire(cmd.Context(), cfg, database)
			if err != nil {
				return err
			}

			summary := a.StatsService.GoalStats(cmd.Context(), args[0], stats.Filter{UserID: userID})
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	c.Flags().StringVar(&userID, "user", "", "Only count logs of this user")
	return c
}
