package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override config file values.
const (
	EnvLogLevel       = "FILEFUSER_LOG_LEVEL"
	EnvMaxConcurrency = "FILEFUSER_MAX_CONCURRENCY"
	EnvHome           = "FILEFUSER_HOME"
)

// HistoryConfig represents the run history ledger configuration
type HistoryConfig struct {
	// Enabled records every run in the SQLite ledger
	Enabled bool `yaml:"enabled"`

	// DBPath is the ledger location; empty resolves to $FILEFUSER_HOME/history.db
	DBPath string `yaml:"db_path"`
}

// Config represents filefuser configuration options
type Config struct {
	// MaxConcurrency caps concurrent file classifications (0 = 4 per CPU)
	MaxConcurrency int `yaml:"max_concurrency"`

	// Timeout bounds a whole run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files when non-empty
	LogDir string `yaml:"log_dir"`

	// FileType is the default archive format (eml, md, html)
	FileType string `yaml:"file_type"`

	// Patterns are used when -p is not given on the command line
	Patterns []string `yaml:"patterns"`

	// ExcludeDirs lists directory names the scanner never descends into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// History contains run ledger configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 0,
		Timeout:        0,
		LogLevel:       "info",
		LogDir:         "",
		FileType:       "eml",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Timeout is parsed by hand so "30s" style values are accepted
	type yamlConfig struct {
		MaxConcurrency int           `yaml:"max_concurrency"`
		Timeout        string        `yaml:"timeout"`
		LogLevel       string        `yaml:"log_level"`
		LogDir         string        `yaml:"log_dir"`
		FileType       string        `yaml:"file_type"`
		Patterns       []string      `yaml:"patterns"`
		ExcludeDirs    []string      `yaml:"exclude_dirs"`
		History        HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.MaxConcurrency != 0 {
		cfg.MaxConcurrency = yamlCfg.MaxConcurrency
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.FileType != "" {
		cfg.FileType = yamlCfg.FileType
	}
	if len(yamlCfg.Patterns) > 0 {
		cfg.Patterns = yamlCfg.Patterns
	}
	if len(yamlCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}

	// history.enabled defaults to true, so presence has to be checked on the raw map
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["history"]; exists && section != nil {
			historyMap, _ := section.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .filefuser/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".filefuser", "config.yaml"))
}

// ApplyEnv overrides values from FILEFUSER_* environment variables.
// Unset or empty variables are ignored.
func (c *Config) ApplyEnv() error {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.LogLevel = level
	}
	if raw := strings.TrimSpace(os.Getenv(EnvMaxConcurrency)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxConcurrency, raw, err)
		}
		c.MaxConcurrency = n
	}
	return nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(maxConcurrency *int, timeout *time.Duration, logLevel *string, logDir *string, fileType *string, noHistory *bool) {
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if fileType != nil {
		c.FileType = *fileType
	}
	if noHistory != nil && *noHistory {
		c.History.Enabled = false
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if strings.TrimSpace(c.FileType) == "" {
		return fmt.Errorf("file_type cannot be empty")
	}

	for _, d := range c.ExcludeDirs {
		if strings.ContainsRune(d, filepath.Separator) {
			return fmt.Errorf("exclude_dirs entry %q must be a directory name, not a path", d)
		}
	}

	return nil
}
