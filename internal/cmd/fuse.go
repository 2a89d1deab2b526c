package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/filefuser/internal/archive"
	"github.com/harrison/filefuser/internal/classifier"
	"github.com/harrison/filefuser/internal/config"
	"github.com/harrison/filefuser/internal/display"
	"github.com/harrison/filefuser/internal/fileutil"
	"github.com/harrison/filefuser/internal/history"
	"github.com/harrison/filefuser/internal/logger"
	"github.com/harrison/filefuser/internal/models"
	"github.com/harrison/filefuser/internal/pipeline"
)

// runFuse implements the root command: scan, classify and archive.
func runFuse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("file")
	outputPath, err := resolveOutputPath(output)
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

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	archiver, err := archive.New(cfg.FileType, log)
	if err != nil {
		var ute *archive.UnknownTypeError
		if errors.As(err, &ute) {
			display.WarnUnknownType(ute.Type, ute.Suggestion, archive.Types()).Display(cmd.ErrOrStderr())
		}
		return err
	}

	log.LogInfo(fmt.Sprintf("Output: %s (%s)", outputPath, cfg.FileType))
	log.LogInfo(fmt.Sprintf("Patterns: %v", patterns))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	orch := pipeline.New(
		fileutil.NewDirScanner(cfg.ExcludeDirs...),
		newProgressClassifier(cfg.MaxConcurrency, log),
		archiver,
		log,
	)

	started := time.Now()
	req := pipeline.Request{
		OutputPath: outputPath,
		FileType:   cfg.FileType,
		Patterns:   patterns,
		SearchDir:  searchDir,
	}
	result, runErr := orch.Run(ctx, req)

	summary := runSummary(result, req, started)
	log.LogSummary(summary)

	if pipeline.IsClassificationFailed(runErr) {
		display.WarnClassificationErrors(result.Errors).Display(cmd.ErrOrStderr())
	}

	var records []models.ClassificationRecord
	if result != nil {
		records = result.Records
	}
	recordHistory(cfg, log, history.NewRun(started, patterns, summary, pipeline.Category(runErr), runErr), records)

	return runErr
}

// runSummary returns the pipeline summary, or a FAILED summary built from
// the request when the run stopped before classification finished.
func runSummary(result *pipeline.Result, req pipeline.Request, started time.Time) models.RunSummary {
	if result != nil {
		return result.Summary
	}
	return models.RunSummary{
		SearchDir: req.SearchDir,
		Output:    req.OutputPath,
		FileType:  req.FileType,
		Duration:  time.Since(started),
		Status:    models.StatusFailed,
	}
}

// recordHistory stores the run in the ledger. Ledger failures are logged
// and never change the run outcome.
func recordHistory(cfg *config.Config, log logger.Logger, run *history.Run, records []models.ClassificationRecord) {
	if !cfg.History.Enabled {
		return
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		log.LogWarn(fmt.Sprintf("Run history disabled: %v", err))
		return
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("Run history disabled: %v", err))
		return
	}
	defer store.Close()

	// The run context may already be cancelled by --timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.RecordRun(ctx, run, history.EntriesFromRecords(records)); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record run history: %v", err))
		return
	}
	log.LogDebug(fmt.Sprintf("Recorded run %s in %s", run.ID, dbPath))
}

// progressClassifier reports classification progress through the logger.
type progressClassifier struct {
	inner *classifier.ConcurrentClassifier
	log   logger.Logger
}

func newProgressClassifier(maxConcurrency int, log logger.Logger) *progressClassifier {
	return &progressClassifier{
		inner: classifier.NewConcurrentClassifier(maxConcurrency),
		log:   log,
	}
}

// Classify delegates to the concurrent classifier, logging one progress
// line per finished record.
func (p *progressClassifier) Classify(ctx context.Context, candidates []string) ([]models.ClassificationRecord, error) {
	total := len(candidates)
	var done atomic.Int64
	p.inner.OnClassified = func(models.ClassificationRecord) {
		p.log.LogProgress(int(done.Add(1)), total)
	}
	return p.inner.Classify(ctx, candidates)
}
