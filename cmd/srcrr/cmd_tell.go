package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newTellCmd creates the "srcrr tell" subcommand.
func newTellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tell <name> <text>...",
		Short: "Send a message to an agent and print its reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name, text := args[0], strings.Join(args[1:], " ")
			return a.withFleet(cmd.Context(), func(f fleet) error {
				reply, err := f.Invoke(cmd.Context(), name, text)
				if err != nil {
					a.log.Errorw("tell failed", "agent", name, "error", err)
					fmt.Fprintf(out, "💀 Failed to tell %s: %v\n", name, err)
					return nil
				}
				fmt.Fprintln(out, reply)
				return nil
			})
		},
	}
}
