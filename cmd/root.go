package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "testhound",
		Short: "Find repositories whose merged PRs add tests",
		Long: `A crawler that searches GitHub for Python repositories whose recently
merged pull requests introduce test code alongside production code,
and writes structured reports about what it finds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addFindFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdRateLimit())
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
