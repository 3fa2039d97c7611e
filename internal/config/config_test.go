package config

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"BRAINDUMP_DATA_DIR", "BRAINDUMP_LLM_PROVIDER", "BRAINDUMP_SIMILARITY_THRESHOLD",
		"BRAINDUMP_DEFAULT_TOPICS", "BRAINDUMP_RELEVANCE_BATCH", "BRAINDUMP_SUGGEST_ANSWERS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "braindump_data", cfg.DataDir)
	assert.Equal(t, filepath.Join("braindump_data", "informazioni"), cfg.InformationDir())
	assert.Equal(t, filepath.Join("braindump_data", "concetti"), cfg.ConceptsDir())
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.InDelta(t, 0.8, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3, cfg.MaxQuestionAttempts)
	assert.Equal(t, 20, cfg.RelevanceBatchSize)
	assert.Equal(t, 5, cfg.ContextFileLimit)
	assert.Equal(t, 200, cfg.ContextExcerptChars)
	assert.Equal(t, DefaultTopics, cfg.DefaultTopics)
	assert.True(t, cfg.SuggestAnswers)
	assert.Equal(t, 1000, cfg.SuggestionExcerptChars)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BRAINDUMP_DATA_DIR", "/srv/notes")
	t.Setenv("BRAINDUMP_LLM_PROVIDER", "OpenAI")
	t.Setenv("BRAINDUMP_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("BRAINDUMP_RELEVANCE_BATCH", "not-a-number")
	t.Setenv("BRAINDUMP_DEFAULT_TOPICS", " musica, ,cucina ")
	t.Setenv("BRAINDUMP_LOG_LEVEL", "debug")
	t.Setenv("BRAINDUMP_SUGGEST_ANSWERS", "false")

	cfg := Load()

	assert.Equal(t, "/srv/notes", cfg.DataDir)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 20, cfg.RelevanceBatchSize, "invalid ints fall back to default")
	assert.Equal(t, []string{"musica", "cucina"}, cfg.DefaultTopics)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.SuggestAnswers)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo, true)

	logger.Info("question generated", "topic", "lavoro")
	logger.Debug("hidden")

	assert.Contains(t, stderr.String(), "question generated")
	assert.Contains(t, file.String(), `"topic":"lavoro"`)
	assert.False(t, strings.Contains(stderr.String(), "hidden"))
}

func TestSetupLoggerKeepsTranscriptQuiet(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelDebug, false)

	logger.Info("llm call", "label", "classify_intent")
	logger.Warn("llm call failed", "label", "question_first")

	assert.NotContains(t, stderr.String(), "classify_intent")
	assert.Contains(t, stderr.String(), "question_first")
	assert.Contains(t, file.String(), `"label":"classify_intent"`)
	assert.Contains(t, file.String(), `"label":"question_first"`)
}

func TestStderrLevel(t *testing.T) {
	tests := []struct {
		level   slog.Level
		verbose bool
		want    slog.Level
	}{
		{slog.LevelDebug, true, slog.LevelDebug},
		{slog.LevelDebug, false, slog.LevelWarn},
		{slog.LevelInfo, false, slog.LevelWarn},
		{slog.LevelError, false, slog.LevelError},
	}
	for _, tt := range tests {
		if got := stderrLevel(tt.level, tt.verbose); got != tt.want {
			t.Errorf("stderrLevel(%v, %v) = %v, want %v", tt.level, tt.verbose, got, tt.want)
		}
	}
}
