package cmd

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository that publishes mcp-vcluster releases.
const githubRepoSlug = "giantswarm/mcp-vcluster"

// errDevelopmentVersion is returned when the running binary has no release version.
var errDevelopmentVersion = errors.New("cannot self-update a development version")

// newSelfUpdateCmd creates the Cobra command for updating the binary in place.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update mcp-vcluster to the latest version",
		Long: `Checks GitHub for the latest release of mcp-vcluster and, when it is
newer than the running binary, replaces the binary with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := rootCmd.Version
			if current == "" || current == "dev" {
				return errDevelopmentVersion
			}

			ctx := cmd.Context()
			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return fmt.Errorf("error occurred while detecting version: %w", err)
			}
			if !found {
				return fmt.Errorf("no release found for %s", githubRepoSlug)
			}

			out := cmd.OutOrStdout()
			if latest.LessOrEqual(current) {
				_, _ = fmt.Fprintf(out, "Current version (%s) is the latest\n", current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("error occurred while updating binary: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
			return nil
		},
	}
}
