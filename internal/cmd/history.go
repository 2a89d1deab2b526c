package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/filefuser/internal/display"
	"github.com/harrison/filefuser/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the history ledger",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 = all)")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: .filefuser/config.yaml)")

	cmd.AddCommand(newHistoryShowCommand())
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run and its classified files",
		Long: `Show the summary of a recorded run and every file it classified.

The run ID may be abbreviated to any unique prefix, such as the short ID
printed by "filefuser history".`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}
}

// openHistory loads configuration and opens the history ledger it points at.
func openHistory(cmd *cobra.Command) (*history.Store, bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, false, err
	}

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, false, err
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open history: %w", err)
	}
	return store, cfg.History.Enabled, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runHistory implements the history command logic
func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	store, enabled, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(commandContext(cmd), limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if !enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Note: run history recording is disabled in the current configuration.")
	}
	display.PrintRuns(cmd.OutOrStdout(), runs)
	return nil
}

// runHistoryShow implements the history show command logic
func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, _, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find run: %w", err)
	}

	files, err := store.RunFiles(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to read run files: %w", err)
	}

	display.PrintRunDetail(cmd.OutOrStdout(), run, files)
	return nil
}
