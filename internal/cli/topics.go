package cli

import (
	"fmt"

	"github.com/raphaelgruber/braindump/internal/guidelines"
	"github.com/raphaelgruber/braindump/internal/notes"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the interview topics",
	Long: `List the interview topics. Topics come from the concept notes in the data
directory; when there are none, the configured default topics are listed.`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

var guidelinesCmd = &cobra.Command{
	Use:   "guidelines",
	Short: "Print the interviewer guidelines",
	Args:  cobra.NoArgs,
	RunE:  runGuidelines,
}

func runTopics(cmd *cobra.Command, args []string) error {
	store := notes.NewStore(cfg, "", logger)
	topics, err := store.Topics(cfg.DefaultTopics)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, t := range topics {
		fmt.Fprintf(out, "%2d. %s\n", i+1, t)
	}
	return nil
}

func runGuidelines(cmd *cobra.Command, args []string) error {
	text, err := guidelines.LoadPermanent(cfg.GuidelinesFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
