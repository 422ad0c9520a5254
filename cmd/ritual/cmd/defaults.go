package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/templui/ritual/internal/seed"
)

func DefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "List the bundled default goals and their activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, err := seed.Goals()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tACTIVITIES")
			for _, g := range goals {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", g.ID, g.Slug, g.Category, len(g.Activities))
			}
			return tw.Flush()
		},
	}
}
