package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRmCmd creates the "srcrr rm" subcommand.
func newRmCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "rm <name>... | -a",
		Short: "Stop and remove agent containers",
		Long:  "Terminates, stops and removes each named agent, concurrently.\nWith -a, removes every known agent, reachable or not.",
		RunE: func(cmd *cobra.Command, names []string) error {
			out := cmd.OutOrStdout()
			if !all && len(names) == 0 {
				fmt.Fprintln(out, "❌ No agent names provided (use -a for all)")
				return nil
			}
			return a.withFleet(cmd.Context(), func(f fleet) error {
				if all {
					names = f.Names()
					if len(names) == 0 {
						fmt.Fprintln(out, "📭 No agents to remove")
						return nil
					}
					fmt.Fprintf(out, "🗑️  Removing all %d agents...\n", len(names))
				}
				for _, name := range names {
					fmt.Fprintf(out, "💀 Removing agent %s...\n", name)
				}
				outcomes := f.RemoveMany(cmd.Context(), names)
				for _, o := range outcomes {
					if o.OK() {
						fmt.Fprintf(out, "⚰️  Agent %s has been removed!\n", o.Name)
						continue
					}
					a.log.Errorw("remove failed", "agent", o.Name, "error", o.Err)
					fmt.Fprintf(out, "⚠️  Failed to remove %s: %v\n", o.Name, o.Err)
				}
				printSummary(out, outcomes, "removed")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "remove all agents")

	return cmd
}
