package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sorcerer/pkg/orchestrator"
)

// newCreateCmd creates the "srcrr create" subcommand.
func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>...",
		Short: "Create and start new agent containers",
		Long:  "Creates one container per name, concurrently, and connects to each agent.\nOne name failing does not affect the others.",
		RunE: func(cmd *cobra.Command, names []string) error {
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "❌ No agent names provided")
				return nil
			}
			return a.withFleet(cmd.Context(), func(f fleet) error {
				for _, name := range names {
					fmt.Fprintf(out, "🌟 Creating agent %s...\n", name)
				}
				outcomes := f.CreateMany(cmd.Context(), names)
				for _, o := range outcomes {
					if o.OK() {
						fmt.Fprintf(out, "✨ Agent %s has answered your call!\n", o.Name)
						continue
					}
					a.log.Errorw("create failed", "agent", o.Name, "error", o.Err)
					fmt.Fprintf(out, "💀 Failed to create %s: %v\n", o.Name, o.Err)
				}
				printSummary(out, outcomes, "created")
				return nil
			})
		},
	}
}

// printSummary prints the batch tally when more than one name was given.
func printSummary(out io.Writer, outcomes []orchestrator.Outcome, verb string) {
	ok, total := orchestrator.Summarize(outcomes)
	if total > 1 {
		fmt.Fprintf(out, "\n📊 Summary: %d/%d agents %s successfully\n", ok, total, verb)
	}
}
