package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-vcluster/internal/schema"
)

// newVersionCmd creates the Cobra command that prints the build version and
// the vcluster schema versions compiled into the binary.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of mcp-vcluster and its embedded schemas",
		Long: `Print the mcp-vcluster build version followed by the vcluster
configuration schema versions that validate-config and
extract-validation-rules can use without network access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := schema.Versions()
			if err != nil {
				return fmt.Errorf("failed to load embedded schemas: %w", err)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "mcp-vcluster version %s\n", rootCmd.Version)
			_, _ = fmt.Fprintf(out, "schema versions: %s\n", strings.Join(versions, ", "))
			return nil
		},
	}
}
