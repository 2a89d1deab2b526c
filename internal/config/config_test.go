package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.MaxConcurrency)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty", cfg.LogDir)
	}
	if cfg.FileType != "eml" {
		t.Errorf("FileType = %q, want %q", cfg.FileType, "eml")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestLoadConfigValidFile tests loading a YAML file that sets every key
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `max_concurrency: 5
timeout: 30s
log_level: debug
log_dir: /tmp/ff-logs
file_type: md
patterns:
  - "*.go"
  - "*.md"
exclude_dirs: [".git", "vendor"]
history:
  enabled: false
  db_path: /tmp/ff.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &Config{
		MaxConcurrency: 5,
		Timeout:        30 * time.Second,
		LogLevel:       "debug",
		LogDir:         "/tmp/ff-logs",
		FileType:       "md",
		Patterns:       []string{"*.go", "*.md"},
		ExcludeDirs:    []string{".git", "vendor"},
		History:        HistoryConfig{Enabled: false, DBPath: "/tmp/ff.db"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

// TestLoadConfigInvalidYAML tests error handling for malformed YAML
func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, `
max_concurrency: 5
patterns: [this is not valid
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for invalid YAML, got nil")
	}
}

// TestLoadConfigPartialValues tests that partial config merges with defaults
func TestLoadConfigPartialValues(t *testing.T) {
	path := writeConfig(t, `max_concurrency: 8
history:
  db_path: custom.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency = %d, want 8", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q (default)", cfg.LogLevel, "info")
	}
	if cfg.FileType != "eml" {
		t.Errorf("FileType = %q, want eml (default)", cfg.FileType)
	}
	// history.enabled was not given, so the default survives
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true (default)")
	}
	if cfg.History.DBPath != "custom.db" {
		t.Errorf("History.DBPath = %q, want custom.db", cfg.History.DBPath)
	}
}

// TestTimeoutParsing tests duration formats accepted in the config file
func TestTimeoutParsing(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"250ms", 250 * time.Millisecond, false},
		{"soon", 0, true},
		{"30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, "timeout: "+tt.value+"\n"))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for timeout %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", cfg.Timeout, tt.want)
			}
		})
	}
}

// TestLoadConfigFromDir tests loading config from .filefuser/config.yaml
func TestLoadConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".filefuser")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("file_type: html\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfigFromDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.FileType != "html" {
		t.Errorf("FileType = %q, want html", cfg.FileType)
	}

	cfg, err = LoadConfigFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigFromDir() should not error on missing config, got: %v", err)
	}
	if cfg.FileType != "eml" {
		t.Errorf("FileType = %q, want eml (default)", cfg.FileType)
	}
}

// TestEmptyConfigFile tests that an empty file yields defaults
func TestEmptyConfigFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

// TestLoadConfigPermissionDenied tests that an unreadable file is an error
func TestLoadConfigPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of permissions")
	}
	path := writeConfig(t, "log_level: debug\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(path, 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for unreadable file")
	}
}

// TestApplyEnv tests FILEFUSER_* environment overrides
func TestApplyEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "debug")
		t.Setenv(EnvMaxConcurrency, "12")

		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.MaxConcurrency != 12 {
			t.Errorf("MaxConcurrency = %d, want 12", cfg.MaxConcurrency)
		}
	})

	t.Run("empty values ignored", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		t.Setenv(EnvMaxConcurrency, "  ")

		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if !reflect.DeepEqual(cfg, DefaultConfig()) {
			t.Errorf("ApplyEnv() changed config: %+v", cfg)
		}
	})

	t.Run("invalid concurrency", func(t *testing.T) {
		t.Setenv(EnvMaxConcurrency, "many")
		if err := DefaultConfig().ApplyEnv(); err == nil {
			t.Error("expected error for non-numeric concurrency")
		}
	})
}

// TestMergeWithFlags tests CLI flag precedence over config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = 3
	cfg.LogDir = "/from/file"

	maxConcurrency := 10
	timeout := 2 * time.Minute
	logLevel := "warn"
	fileType := "html"
	noHistory := true

	cfg.MergeWithFlags(&maxConcurrency, &timeout, &logLevel, nil, &fileType, &noHistory)

	if cfg.MaxConcurrency != 10 {
		t.Errorf("MaxConcurrency = %d, want 10", cfg.MaxConcurrency)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.LogDir != "/from/file" {
		t.Errorf("LogDir = %q, nil flag must not override", cfg.LogDir)
	}
	if cfg.FileType != "html" {
		t.Errorf("FileType = %q, want html", cfg.FileType)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, --no-history must disable it")
	}
}

// TestMergeWithFlagsNil tests that all-nil flags leave the config untouched
func TestMergeWithFlagsNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeWithFlags(nil, nil, nil, nil, nil, nil)
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("MergeWithFlags(nil...) changed config: %+v", cfg)
	}

	noHistory := false
	cfg.MergeWithFlags(nil, nil, nil, nil, nil, &noHistory)
	if !cfg.History.Enabled {
		t.Error("--no-history=false must not disable history")
	}
}

// TestConfigValidation tests Validate on valid and invalid values
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}, wantErr: false},
		{name: "uppercase level", modify: func(c *Config) { c.LogLevel = "DEBUG" }, wantErr: false},
		{name: "negative concurrency", modify: func(c *Config) { c.MaxConcurrency = -1 }, wantErr: true},
		{name: "unknown level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "empty file type", modify: func(c *Config) { c.FileType = " " }, wantErr: true},
		{name: "exclude dir with separator", modify: func(c *Config) { c.ExcludeDirs = []string{"a/b"} }, wantErr: true},
		{name: "exclude dir name", modify: func(c *Config) { c.ExcludeDirs = []string{"node_modules"} }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestGetHome tests FILEFUSER_HOME resolution
func TestGetHome(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "custom-home")
		t.Setenv(EnvHome, dir)

		home, err := GetHome()
		if err != nil {
			t.Fatalf("GetHome() error = %v", err)
		}
		if home != dir {
			t.Errorf("GetHome() = %q, want %q", home, dir)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("GetHome() must not create a directory named by FILEFUSER_HOME")
		}
	})

	t.Run("user home fallback", func(t *testing.T) {
		userHome := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("HOME", userHome)

		home, err := GetHome()
		if err != nil {
			t.Fatalf("GetHome() error = %v", err)
		}
		if home != filepath.Join(userHome, ".filefuser") {
			t.Errorf("GetHome() = %q", home)
		}
		if info, err := os.Stat(home); err != nil || !info.IsDir() {
			t.Errorf("home directory was not created: %v", err)
		}
	})
}

// TestHistoryDBPath tests ledger path resolution
func TestHistoryDBPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	cfg := DefaultConfig()
	path, err := cfg.HistoryDBPath()
	if err != nil {
		t.Fatalf("HistoryDBPath() error = %v", err)
	}
	if path != filepath.Join(home, "history.db") {
		t.Errorf("HistoryDBPath() = %q", path)
	}

	cfg.History.DBPath = "/explicit/ledger.db"
	if path, _ := cfg.HistoryDBPath(); path != "/explicit/ledger.db" {
		t.Errorf("HistoryDBPath() = %q, want explicit path", path)
	}
}
