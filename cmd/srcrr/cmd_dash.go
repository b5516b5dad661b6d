package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// newDashCmd creates the "srcrr dash" subcommand.
func newDashCmd(a *app) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Launch the live fleet dashboard",
		Long:  "Shows every connected agent's status and recent history, refreshed every 2s.\nPress q to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withFleet(cmd.Context(), func(f fleet) error {
				p := tea.NewProgram(newDashModel(cmd.Context(), f, lines),
					tea.WithAltScreen(), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("run dashboard: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "l", 4, "number of recent chat history lines per agent")

	return cmd
}
