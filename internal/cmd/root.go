package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command. Invoked without a subcommand it
// fuses every matching text file under a directory into one archive.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filefuser -f <output> -p <patterns>",
		Short: "Combine text files into a single multipart archive",
		Long: `filefuser walks a directory, selects files whose paths contain one of the
given patterns, skips binary files and writes every text file into a single
archive (a MIME multipart .eml by default, or Markdown/HTML).

Patterns are comma separated. '*' matches any run of characters and every
other character is literal; a pattern matches anywhere in the path.

Configuration is loaded from .filefuser/config.yaml if present.
FILEFUSER_* environment variables override the file, and CLI flags
override both.

Examples:
  filefuser -f out.eml -p "*.go,*.md"
  filefuser -f notes.md -p "docs/" -t md -d ~/project
  filefuser scan -p "*.go"
  filefuser history --limit 5`,
		Version: Version,
		Args:    cobra.NoArgs,
		RunE:    runFuse,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "Output archive path (required)")
	flags.StringP("patterns", "p", "", "Comma separated list of path patterns")
	flags.StringP("type", "t", "eml", "Archive type: eml, md or html")
	flags.StringP("dir", "d", "", "Directory to scan (default: current directory)")
	flags.String("timeout", "", "Maximum run time (e.g., 30s, 5m)")
	flags.String("log-dir", "", "Directory for per-run log files")
	flags.Bool("no-history", false, "Do not record this run in the history ledger")
	_ = cmd.MarkFlagRequired("file")

	addCommonFlags(cmd)

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// addCommonFlags registers the flags every command resolves config with.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .filefuser/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().Int("max-concurrency", 0, "Maximum number of files classified at once (0 = 4 per CPU)")
}
