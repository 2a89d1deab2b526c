package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/filefuser/internal/classifier"
	"github.com/harrison/filefuser/internal/display"
	"github.com/harrison/filefuser/internal/fileutil"
	"github.com/harrison/filefuser/internal/models"
	"github.com/harrison/filefuser/internal/pattern"
	"github.com/harrison/filefuser/internal/pipeline"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List matching files and their classification without writing an archive",
		Long: `Scan runs the same pattern matching and text/binary classification as a
normal run and prints one line per candidate. Nothing is written.

Examples:
  filefuser scan -p "*.go,*.md"
  filefuser scan -p "src/" -d ~/project`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	cmd.Flags().StringP("patterns", "p", "", "Comma separated list of path patterns")
	cmd.Flags().StringP("dir", "d", "", "Directory to scan (default: current directory)")
	addCommonFlags(cmd)

	return cmd
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	patterns, err := resolvePatterns(cmd, cfg)
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	searchDir, err := resolveSearchDir(dir)
	if err != nil {
		return err
	}

	matcher, err := pattern.Compile(patterns)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	candidates, err := fileutil.NewDirScanner(cfg.ExcludeDirs...).Scan(ctx, searchDir, matcher)
	if err != nil {
		return err
	}

	records, err := classifier.NewConcurrentClassifier(cfg.MaxConcurrency).Classify(ctx, candidates)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := display.NewProgressIndicator(out, len(records))
	progress.Start(searchDir)
	for _, r := range records {
		progress.Step(r)
	}
	progress.Complete(models.Summarize(records))

	if failed := classifier.OnlyErrors(records); len(failed) > 0 {
		return &pipeline.ClassificationFailedError{Records: failed}
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No files matched.")
	}
	return nil
}
