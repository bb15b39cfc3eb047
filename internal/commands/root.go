// Package commands implements the invoice-importer command line.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=..."
var Version = "dev"

type globalOptions struct {
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "invoice-importer",
		Short:   "Import invoice spreadsheets into SQLite and export them again",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("INVOICE_CONFIG"), "path to YAML config file")

	rootCmd.AddCommand(
		newImportCommand(opts),
		newValidateCommand(opts),
		newExportCommand(opts),
		newMigrateCommand(opts),
	)

	return rootCmd
}
