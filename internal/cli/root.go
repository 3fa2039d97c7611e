// Package cli provides the command-line interface for braindump.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/braindump/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and logger
	cfg        config.Config
	logger     *slog.Logger
	closeLogFn func() error
)

// rootCmd runs an interview when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "braindump",
	Short: "Interview yourself into a personal knowledge base",
	Long: `Braindump interviews you about topics of your life, records your answers
as markdown notes and, at the end of the session, consolidates them into
first-person documents that you review before they replace the permanent notes.

Running braindump without a subcommand starts an interview.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		logger, closeLogFn = config.SetupLogger(cfg.LogFile, cfg.LogLevel, verbose)
		slog.SetDefault(logger)
		logger.Debug("config loaded", "data_dir", cfg.DataDir, "provider", cfg.LLMProvider, "model", cfg.LLMModel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogFn != nil {
			if err := closeLogFn(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runInterview,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr as well as to the log file")
	rootCmd.Flags().StringVarP(&interviewTopic, "topic", "t", "", "topic name or list index to start with")

	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(guidelinesCmd)
	rootCmd.AddCommand(consolidateCmd)
}
