package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/filefuser/internal/archive"
	"github.com/harrison/filefuser/internal/pipeline"
)

// executeCommand runs the root command with args and returns what it wrote.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// canonicalTempDir returns t.TempDir() with symlinks resolved, matching the
// canonical paths the fuse command works with.
func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// setupTree creates a search directory with one text and one binary file
// and points the history ledger at a temporary home.
func setupTree(t *testing.T) (dir, home string) {
	t.Helper()
	root := canonicalTempDir(t)
	dir = filepath.Join(root, "src")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.bin"), []byte{0x01, 0x00, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}

	home = filepath.Join(root, "home")
	t.Setenv("FILEFUSER_HOME", home)
	t.Setenv("FILEFUSER_LOG_LEVEL", "")
	t.Setenv("FILEFUSER_MAX_CONCURRENCY", "")
	return dir, home
}

func noConfig(t *testing.T) string {
	return filepath.Join(canonicalTempDir(t), "missing.yaml")
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := executeCommand(t, "--help")
	if err != nil {
		t.Fatalf("--help returned error: %v", err)
	}
	for _, want := range []string{"filefuser", "--patterns", "--type", "scan", "history"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	out, _, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version returned error: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("version output %q does not contain %q", out, Version)
	}
}

func TestFuse_EndToEnd(t *testing.T) {
	dir, home := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	stdout, _, err := executeCommand(t, "-f", output, "-p", "*.txt, *.bin", "-d", dir, "--config", noConfig(t))
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `filename="a.txt"`) || !strings.Contains(content, "hello") {
		t.Errorf("archive missing text file:\n%s", content)
	}
	if strings.Contains(content, "b.bin") {
		t.Error("binary file must not be archived")
	}

	for _, want := range []string{"Skipping binary file", "=== Run Summary ===", "Archived: 1", "Status: SUCCESS"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("log output missing %q:\n%s", want, stdout)
		}
	}

	if _, err := os.Stat(filepath.Join(home, "history.db")); err != nil {
		t.Errorf("history ledger not created: %v", err)
	}

	histOut, _, err := executeCommand(t, "history", "--config", noConfig(t))
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(histOut, "SUCCESS") || !strings.Contains(histOut, output) {
		t.Errorf("history output missing run:\n%s", histOut)
	}
}

func TestFuse_MarkdownFromConfig(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.md")

	configPath := filepath.Join(canonicalTempDir(t), "config.yaml")
	configYAML := "file_type: md\npatterns:\n  - \".txt\"\nhistory:\n  enabled: false\n"
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCommand(t, "-f", output, "-d", dir, "--config", configPath); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Archived Files") || !strings.Contains(string(data), "## a.txt") {
		t.Errorf("unexpected markdown archive:\n%s", data)
	}
}

func TestFuse_TypeFlagOverridesConfig(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.html")

	configPath := filepath.Join(canonicalTempDir(t), "config.yaml")
	if err := os.WriteFile(configPath, []byte("file_type: md\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCommand(t, "-f", output, "-p", "*.txt", "-t", "html", "-d", dir, "--config", configPath, "--no-history"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Errorf("expected HTML archive, got:\n%s", data)
	}
}

func TestFuse_EmptyPatternsWritesEmptyArchive(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	stdout, _, err := executeCommand(t, "-f", output, "-p", "", "-d", dir, "--config", noConfig(t), "--no-history")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(stdout, "Candidates: 0") {
		t.Errorf("expected zero candidates:\n%s", stdout)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("archive should still be written: %v", err)
	}
}

func TestFuse_NoHistory(t *testing.T) {
	dir, home := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	if _, _, err := executeCommand(t, "-f", output, "-p", "*.txt", "-d", dir, "--config", noConfig(t), "--no-history"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "history.db")); !os.IsNotExist(err) {
		t.Errorf("history.db should not exist with --no-history, stat err = %v", err)
	}
}

func TestFuse_LogDir(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")
	logDir := filepath.Join(canonicalTempDir(t), "logs")

	if _, _, err := executeCommand(t, "-f", output, "-p", "*.txt", "-d", dir, "--config", noConfig(t), "--no-history", "--log-dir", logDir); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("run log not written: %v", err)
	}
	if !strings.Contains(string(data), "Status: SUCCESS") {
		t.Errorf("run log missing summary:\n%s", data)
	}
}

func TestFuse_Errors(t *testing.T) {
	dir, _ := setupTree(t)
	notDir := filepath.Join(dir, "a.txt")
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing file flag",
			args:    []string{"-p", "*.txt", "-d", dir},
			wantErr: `required flag(s) "file" not set`,
		},
		{
			name:    "missing patterns",
			args:    []string{"-f", output, "-d", dir},
			wantErr: `required flag(s) "patterns" not set`,
		},
		{
			name:    "search dir is a file",
			args:    []string{"-f", output, "-p", "*.txt", "-d", notDir},
			wantErr: "is not a directory",
		},
		{
			name:    "search dir missing",
			args:    []string{"-f", output, "-p", "*.txt", "-d", filepath.Join(dir, "nope")},
			wantErr: "search directory",
		},
		{
			name:    "invalid timeout",
			args:    []string{"-f", output, "-p", "*.txt", "-d", dir, "--timeout", "soon"},
			wantErr: "invalid timeout format",
		},
		{
			name:    "invalid log level",
			args:    []string{"-f", output, "-p", "*.txt", "-d", dir, "--log-level", "loud"},
			wantErr: "invalid configuration",
		},
		{
			name:    "invalid env concurrency",
			args:    []string{"-f", output, "-p", "*.txt", "-d", dir},
			env:     map[string]string{"FILEFUSER_MAX_CONCURRENCY": "many"},
			wantErr: "FILEFUSER_MAX_CONCURRENCY",
		},
		{
			name:    "positional args rejected",
			args:    []string{"-f", output, "-p", "*.txt", "extra"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append(tt.args, "--config", noConfig(t), "--no-history")
			_, _, err := executeCommand(t, args...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no archive should be written when argument validation fails")
	}
}

func TestFuse_UnknownTypeSuggests(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	_, stderr, err := executeCommand(t, "-f", output, "-p", "*.txt", "-t", "eml2", "-d", dir, "--config", noConfig(t), "--no-history")
	var ute *archive.UnknownTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if !strings.Contains(stderr, "Did you mean -t eml?") {
		t.Errorf("stderr missing suggestion:\n%s", stderr)
	}
}

func TestFuse_ClassificationFailureRecordedInHistory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read unreadable files")
	}
	dir, _ := setupTree(t)
	locked := filepath.Join(dir, "locked.txt")
	if err := os.WriteFile(locked, []byte("secret"), 0000); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	_, stderr, err := executeCommand(t, "-f", output, "-p", ".txt", "-d", dir, "--config", noConfig(t))
	if !pipeline.IsClassificationFailed(err) {
		t.Fatalf("expected ClassificationFailedError, got %v", err)
	}
	if !strings.Contains(stderr, "could not be classified") || !strings.Contains(stderr, locked) {
		t.Errorf("stderr missing failure warning:\n%s", stderr)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("archive must not be written when classification fails")
	}

	histOut, _, err := executeCommand(t, "history", "--config", noConfig(t), "--limit", "1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(histOut, "FAILED") || !strings.Contains(histOut, "classification") {
		t.Errorf("history should show the failed run:\n%s", histOut)
	}
}

func TestScan(t *testing.T) {
	dir, _ := setupTree(t)

	out, _, err := executeCommand(t, "scan", "-p", "*.txt,*.bin", "-d", dir, "--config", noConfig(t))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, want := range []string{"Classifying 2 candidate(s)", "TEXT", "BINARY", filepath.Join(dir, "a.txt"), "1 text, 1 binary, 0 error(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q:\n%s", want, out)
		}
	}
}

func TestScan_NoMatches(t *testing.T) {
	dir, _ := setupTree(t)

	out, _, err := executeCommand(t, "scan", "-p", "*.nothing", "-d", dir, "--config", noConfig(t))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "No files matched.") {
		t.Errorf("expected no-match message:\n%s", out)
	}
}

func TestHistory_Empty(t *testing.T) {
	setupTree(t)

	out, _, err := executeCommand(t, "history", "--config", noConfig(t))
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistory_NegativeLimit(t *testing.T) {
	setupTree(t)

	_, _, err := executeCommand(t, "history", "--config", noConfig(t), "--limit", "-1")
	if err == nil || !strings.Contains(err.Error(), "--limit") {
		t.Errorf("expected limit error, got %v", err)
	}
}

func TestFuse_SymlinkedSearchDir(t *testing.T) {
	dir, _ := setupTree(t)
	link := filepath.Join(canonicalTempDir(t), "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	stdout, _, err := executeCommand(t, "-f", output, "-p", "*.txt", "-d", link, "--config", noConfig(t))
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if !strings.Contains(string(data), `filename="a.txt"`) {
		t.Errorf("archive through symlinked search dir is missing a.txt:\n%s", data)
	}
	if !strings.Contains(stdout, "Archived: 1") {
		t.Errorf("expected one archived file:\n%s", stdout)
	}
}

func TestFuse_OutputInsideSymlinkedSearchDirExcluded(t *testing.T) {
	dir, _ := setupTree(t)
	link := filepath.Join(canonicalTempDir(t), "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// The output is named through the link while the scan reports real paths
	output := filepath.Join(link, "archive.eml")
	args := []string{"-f", output, "-p", "*.txt, *.eml", "-d", dir, "--config", noConfig(t)}

	if _, _, err := executeCommand(t, args...); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	stdout, _, err := executeCommand(t, args...)
	if err != nil {
		t.Fatalf("second run failed: %v\n%s", err, stdout)
	}

	data, err := os.ReadFile(filepath.Join(dir, "archive.eml"))
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if strings.Contains(string(data), `filename="archive.eml"`) {
		t.Error("archive must not include itself")
	}
	if !strings.Contains(string(data), `filename="a.txt"`) {
		t.Errorf("archive missing a.txt:\n%s", data)
	}
}

// latestRunID returns the short ID of the newest run in the history table.
func latestRunID(t *testing.T) string {
	t.Helper()
	out, _, err := executeCommand(t, "history", "--config", noConfig(t), "--limit", "1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("unexpected history table:\n%s", out)
	}
	return strings.Fields(lines[1])[0]
}

func TestHistoryShow(t *testing.T) {
	dir, _ := setupTree(t)
	output := filepath.Join(canonicalTempDir(t), "archive.eml")

	if _, _, err := executeCommand(t, "-f", output, "-p", "*.txt, *.bin", "-d", dir, "--config", noConfig(t)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	id := latestRunID(t)
	out, _, err := executeCommand(t, "history", "show", id, "--config", noConfig(t))
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	for _, want := range []string{
		"Run:        " + id,
		"Status:     SUCCESS",
		"Search dir: " + dir,
		output + " (eml)",
		"1 archived of 2 candidate(s)",
		"KIND", "text", filepath.Join(dir, "a.txt"),
		"binary", filepath.Join(dir, "b.bin"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("history show missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryShow_Errors(t *testing.T) {
	setupTree(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing run ID", args: []string{"history", "show"}, wantErr: "accepts 1 arg"},
		{name: "unknown run ID", args: []string{"history", "show", "does-not-exist"}, wantErr: "run not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, append(tt.args, "--config", noConfig(t))...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
