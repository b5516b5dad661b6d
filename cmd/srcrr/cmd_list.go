package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newListCmd creates the "srcrr list" subcommand.
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all active agents",
		Long:  "Lists agents with a live connection. Agents that are stopped or\nunreachable are not shown; remove them with srcrr rm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return a.withFleet(cmd.Context(), func(f fleet) error {
				fmt.Fprintln(out, "📋 Listing agents...")
				fmt.Fprintln(out)
				names := f.List()
				if len(names) == 0 {
					fmt.Fprintln(out, "The realm is empty - no agents found.")
					return nil
				}
				for _, name := range names {
					fmt.Fprintf(out, "🧙 %s\n", name)
				}
				return nil
			})
		},
	}
}
