package cmd

import (
	"fmt"
	"os"

	"github.com/codescalpel/codescalpel/graph"
	"github.com/codescalpel/codescalpel/output"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "scalpel",
	Short: "Code Scalpel - static analysis and surgical code modification for AI agents",
	Long: `Code Scalpel - a static analysis and code-surgery service for AI coding agents.

Parses Python, Java, and Go into a shared IR, builds a
cross-language symbol/call/taint graph, and exposes query and patch
operations behind a tiered policy engine. This CLI is a thin shell over
that engine; the MCP tool surface is the primary integration point.

Learn more: https://github.com/codescalpel/codescalpel`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verboseFlag, _ = cmd.Flags().GetBool("verbose") //nolint:all
		if verboseFlag {
			graph.EnableVerboseLogging()
		}

		// Show banner for help command
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
