package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newHistoryCmd creates the "srcrr history" subcommand.
func newHistoryCmd(a *app) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "Print an agent's chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := args[0]
			return a.withFleet(cmd.Context(), func(f fleet) error {
				history, err := f.History(cmd.Context(), name, lines)
				if err != nil {
					fmt.Fprintf(out, "Could not retrieve chat history: %v\n", err)
					return nil
				}
				if len(history) == 0 {
					fmt.Fprintf(out, "No history for %s yet.\n", name)
					return nil
				}
				r := newRenderer(out)
				for _, line := range history {
					fmt.Fprintln(out, r.chatLine(line))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "number of most recent entries (0 = all)")

	return cmd
}
