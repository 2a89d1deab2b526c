package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/filefuser/internal/config"
	"github.com/harrison/filefuser/internal/logger"
	"github.com/harrison/filefuser/internal/pattern"
)

// loadConfig resolves configuration in order: defaults, config file,
// environment, then flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	flags := cmd.Flags()

	var maxConcurrencyPtr *int
	if flags.Changed("max-concurrency") {
		v, _ := flags.GetInt("max-concurrency")
		maxConcurrencyPtr = &v
	}

	var timeoutPtr *time.Duration
	if flags.Changed("timeout") {
		raw, _ := flags.GetString("timeout")
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", raw, err)
		}
		timeoutPtr = &timeout
	}

	var logLevelPtr *string
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		logLevelPtr = &v
	}

	var logDirPtr *string
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		logDirPtr = &v
	}

	var fileTypePtr *string
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		fileTypePtr = &v
	}

	var noHistoryPtr *bool
	if flags.Changed("no-history") {
		v, _ := flags.GetBool("no-history")
		noHistoryPtr = &v
	}

	cfg.MergeWithFlags(maxConcurrencyPtr, timeoutPtr, logLevelPtr, logDirPtr, fileTypePtr, noHistoryPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolvePatterns returns the -p list when given, otherwise the configured
// patterns. An explicitly empty -p yields an empty set.
func resolvePatterns(cmd *cobra.Command, cfg *config.Config) ([]string, error) {
	if cmd.Flags().Changed("patterns") {
		raw, _ := cmd.Flags().GetString("patterns")
		return pattern.SplitList(raw), nil
	}
	if len(cfg.Patterns) > 0 {
		return cfg.Patterns, nil
	}
	return nil, fmt.Errorf(`required flag(s) "patterns" not set`)
}

// resolveSearchDir returns dir (or the working directory) as a canonical
// absolute path, symlinks resolved, that exists and is a directory.
func resolveSearchDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search directory %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("search directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("search directory %s is not a directory", abs)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search directory %s: %w", abs, err)
	}
	return canonical, nil
}

// resolveOutputPath returns path as an absolute path whose deepest existing
// ancestor has its symlinks resolved, so it compares equal to the canonical
// paths the scanner reports. Missing trailing components are kept as given.
func resolveOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path %s: %w", path, err)
	}

	dir, rest := filepath.Dir(abs), filepath.Base(abs)
	for {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// newLogger builds the console logger and, when a log directory is
// configured, a per-run file logger behind it. The returned func closes
// the file logger.
func newLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, func(), error) {
	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	console.LogDebug(fmt.Sprintf("Writing run log to %s", fileLog.Path()))

	return logger.NewMultiLogger(console, fileLog), func() { fileLog.Close() }, nil
}
