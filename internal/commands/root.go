package commands

import (
	"github.com/spf13/cobra"

	"github.com/tutorlink/walletview/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "walletview",
		Short:   "Reconciled wallet history for the tutoring marketplace",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigFile, "path to walletview.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newShowCommand(&opts))
	rootCmd.AddCommand(newWatchCommand(&opts))
	rootCmd.AddCommand(newServeCommand(&opts))

	return rootCmd
}
