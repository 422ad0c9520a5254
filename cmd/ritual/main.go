package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/templui/ritual/cmd/ritual/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ritual",
		Short:        "Admin tools for the ritual API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.DefaultsCmd())
	rootCmd.AddCommand(cmd.StatsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
