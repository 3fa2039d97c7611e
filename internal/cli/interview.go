package cli

import (
	"fmt"

	"github.com/raphaelgruber/braindump/internal/consolidate"
	"github.com/raphaelgruber/braindump/internal/guidelines"
	"github.com/raphaelgruber/braindump/internal/interview"
	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/metrics"
	"github.com/raphaelgruber/braindump/internal/notes"
	"github.com/spf13/cobra"
)

var interviewTopic string

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Start an interview session",
	Long: `Start an interview session. Answers are recorded in a per-session mirror
of the notes store and consolidated when the session ends.

Commands during the interview:
  fine, exit    end the interview
  skip, salta   skip the current question
  aiuto, help   show the available commands

Examples:
  braindump interview
  braindump interview --topic lavoro
  braindump interview --topic 3`,
	Args: cobra.NoArgs,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVarP(&interviewTopic, "topic", "t", "", "topic name or list index to start with")
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	console := NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())

	collector := metrics.NewCollector()
	store := notes.NewStore(cfg, notes.NewSessionID(), logger)
	log := logger.With("session", store.SessionID())

	gateway, err := llm.NewGateway(cfg, collector, log)
	if err != nil {
		return fmt.Errorf("init text generation: %w", err)
	}

	if err := store.Init(); err != nil {
		return fmt.Errorf("init notes store: %w", err)
	}
	topics, err := store.Topics(cfg.DefaultTopics)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	gm := guidelines.NewManager(cfg.GuidelinesFile, store.SessionDir(), gateway, log)
	if err := gm.Init(); err != nil {
		return fmt.Errorf("init guidelines: %w", err)
	}

	deps := interview.Deps{
		Generator:  gateway,
		Store:      store,
		Guidelines: gm,
		Finalizer:  consolidate.NewEngine(gateway, store, console, log),
		Console:    console,
		Logger:     log,
	}
	if cfg.SuggestAnswers {
		deps.Clone = interview.NewClone(gateway, store, cfg.ContextFileLimit, cfg.SuggestionExcerptChars, log)
	}
	session := interview.NewSession(cfg, topics, deps)

	log.Info("session started", "model", gateway.Model(), "topics", len(topics))
	console.Info(fmt.Sprintf("Sessione %s, modello %s. Scrivi 'aiuto' per l'elenco dei comandi.", store.SessionID(), gateway.Model()))

	runErr := session.Run(ctx, interviewTopic)
	printStats(cmd.OutOrStdout(), collector.Snapshot())
	log.Info("session ended", "topics", session.AnsweredTopics(), "error", runErr)
	return runErr
}
