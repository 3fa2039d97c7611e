package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LLM providers supported by the generation gateway.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Names of the two logical note stores.
const (
	InformationDirName = "informazioni"
	ConceptsDirName    = "concetti"
)

// DefaultTopics are offered when the concepts store is empty.
var DefaultTopics = []string{
	"lavoro",
	"hobby",
	"famiglia",
	"relazioni",
	"persone",
	"esperienze",
	"convinzioni",
	"viaggi",
	"abitudini",
	"idee",
	"progetti",
	"formazione",
}

// Config holds all configuration values.
// It is built once by Load and passed into every component constructor.
type Config struct {
	// Storage layout
	DataDir        string
	SessionDir     string
	StagingDir     string
	GuidelinesFile string

	// Text generation
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Temperature     float64
	MaxTokens       int
	TopP            float64

	// Interview tuning
	SimilarityThreshold float64
	MaxQuestionAttempts int
	RelevanceBatchSize  int
	ContextFileLimit    int
	ContextExcerptChars int
	HistoryWindowChars  int
	DefaultTopics       []string

	// Suggested answers drafted from existing notes
	SuggestAnswers         bool
	SuggestionExcerptChars int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// InformationDir is the permanent store of recorded Q/A content.
func (c Config) InformationDir() string {
	return filepath.Join(c.DataDir, InformationDirName)
}

// ConceptsDir is the permanent store of topic definitions.
func (c Config) ConceptsDir() string {
	return filepath.Join(c.DataDir, ConceptsDirName)
}

// Load reads configuration from an optional .env file and environment variables.
func Load() Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	return Config{
		DataDir:        getEnv("BRAINDUMP_DATA_DIR", "braindump_data"),
		SessionDir:     getEnv("BRAINDUMP_SESSION_DIR", "temp_session"),
		StagingDir:     getEnv("BRAINDUMP_STAGING_DIR", "new_tree"),
		GuidelinesFile: getEnv("BRAINDUMP_GUIDELINES_FILE", filepath.Join("guidelines", "interviewer_guidelines.md")),

		LLMProvider:     strings.ToLower(getEnv("BRAINDUMP_LLM_PROVIDER", ProviderOllama)),
		LLMModel:        getEnv("BRAINDUMP_LLM_MODEL", "gemma3:1b"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		Temperature:     getEnvFloat("BRAINDUMP_TEMPERATURE", 0.7),
		MaxTokens:       getEnvInt("BRAINDUMP_MAX_TOKENS", 1024),
		TopP:            getEnvFloat("BRAINDUMP_TOP_P", 0.95),

		SimilarityThreshold: getEnvFloat("BRAINDUMP_SIMILARITY_THRESHOLD", 0.8),
		MaxQuestionAttempts: getEnvInt("BRAINDUMP_MAX_QUESTION_ATTEMPTS", 3),
		RelevanceBatchSize:  getEnvInt("BRAINDUMP_RELEVANCE_BATCH", 20),
		ContextFileLimit:    getEnvInt("BRAINDUMP_CONTEXT_FILES", 5),
		ContextExcerptChars: getEnvInt("BRAINDUMP_CONTEXT_EXCERPT", 200),
		HistoryWindowChars:  getEnvInt("BRAINDUMP_HISTORY_WINDOW", 500),
		DefaultTopics:       getEnvList("BRAINDUMP_DEFAULT_TOPICS", DefaultTopics),

		SuggestAnswers:         getEnvBool("BRAINDUMP_SUGGEST_ANSWERS", true),
		SuggestionExcerptChars: getEnvInt("BRAINDUMP_SUGGESTION_EXCERPT", 1000),

		LogFile:  getEnv("BRAINDUMP_LOG_FILE", "/tmp/braindump.log"),
		LogLevel: parseLogLevel(getEnv("BRAINDUMP_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
