package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-vcluster application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcp-vcluster",
	Short: "MCP server for vcluster configuration",
	Long: `mcp-vcluster is a Model Context Protocol (MCP) server for vcluster
configuration files. Configurations are read from the vcluster GitHub
repository by version and file, or passed inline, and are checked against
the vcluster schema versions embedded in the binary.

Tools:
  create-vcluster-config     generate a values file for a distro and backing store
  list-versions              list vcluster releases, newest first
  smart-query                look up paths, patterns or free text in a values file
  extract-validation-rules   list the typed rules of a schema version
  validate-config            validate a values file against its schema version

When run without subcommands, it starts the MCP server (equivalent to 'mcp-vcluster serve').`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-vcluster version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
