package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankist/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bankist",
		Short:   "Minimalist banking demo in the terminal",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newShellCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
