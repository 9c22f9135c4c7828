package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path passed with --config.
	cfgFile string

	// verbose forces debug logging regardless of the configured level.
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "pagewatch",
		Short: "Watch web pages and report content changes",
		Long: `pagewatch periodically fetches configured web pages, extracts the relevant
content, compares it with the previous snapshot and notifies when it changed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $PAGEWATCH_CONFIG, then ./config.yaml or config.json next to the binary)",
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newCheckCommand(),
		newDaemonCommand(),
		newResetCommand(),
		newDiffCommand(),
		newListCommand(),
		newHistoryCommand(),
		newTestNotificationCommand(),
	)
}
