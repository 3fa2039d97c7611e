package cli

import (
	"fmt"

	"github.com/raphaelgruber/braindump/internal/consolidate"
	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/metrics"
	"github.com/raphaelgruber/braindump/internal/notes"
	"github.com/spf13/cobra"
)

var consolidateSession string

var consolidateCmd = &cobra.Command{
	Use:   "consolidate <topic>",
	Short: "Consolidate the answers of a previous session",
	Long: `Re-run consolidation for one topic of a previous session whose
temporary directory was kept.

Examples:
  braindump consolidate lavoro --session 1a2b3c4d`,
	Args: cobra.ExactArgs(1),
	RunE: runConsolidate,
}

func init() {
	consolidateCmd.Flags().StringVarP(&consolidateSession, "session", "s", "", "session id (required)")
	_ = consolidateCmd.MarkFlagRequired("session")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	store := notes.NewStore(cfg, consolidateSession, logger)
	if !store.Exists() {
		return fmt.Errorf("session %s not found in %s", consolidateSession, cfg.SessionDir)
	}

	collector := metrics.NewCollector()
	log := logger.With("session", consolidateSession)
	gateway, err := llm.NewGateway(cfg, collector, log)
	if err != nil {
		return fmt.Errorf("init text generation: %w", err)
	}

	console := NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
	engine := consolidate.NewEngine(gateway, store, console, log)
	err = engine.FinalizeSession(cmd.Context(), []string{args[0]})
	printStats(cmd.OutOrStdout(), collector.Snapshot())
	return err
}
