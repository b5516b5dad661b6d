package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPsCmd creates the "srcrr ps" subcommand.
func newPsCmd(a *app) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "ps",
		Short: "Show detailed status information for all agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return a.withFleet(cmd.Context(), func(f fleet) error {
				fmt.Fprintln(out, "📊 Overview of agents...")
				views := f.Overview(cmd.Context(), lines)
				if len(views) == 0 {
					fmt.Fprintln(out, "No agents found.")
					return nil
				}
				fmt.Fprintln(out, newRenderer(out).overview(views))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "l", 4, "number of recent chat history lines to show")

	return cmd
}
