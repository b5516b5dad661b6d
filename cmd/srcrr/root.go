package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sorcerer/internal/appversion"
)

// newRootCmd creates the root srcrr command with all subcommands attached.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "srcrr",
		Short:         "🧙 The Sorcerer - Command agents to do your bidding",
		Long:          "srcrr creates, inspects and talks to LLM agents running in local containers.",
		Version:       fmt.Sprintf("srcrr %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setupLogger()
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newRmCmd(a),
		newPsCmd(a),
		newTellCmd(a),
		newHistoryCmd(a),
		newDashCmd(a),
		newAgentCmd(a),
	)

	return cmd
}
