// Package llm provides the text-generation gateway using langchaingo.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/braindump/internal/config"
	"github.com/raphaelgruber/braindump/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrorText is returned in place of generated text when the backend fails.
const ErrorText = "Si è verificato un errore nella generazione del testo."

// ErrFatalAPI marks provider errors that retrying will not fix (credentials, quota).
var ErrFatalAPI = errors.New("fatal llm api error")

// Generator is the capability every interview component depends on.
// Implementations never fail: backend errors degrade to ErrorText.
type Generator interface {
	GenerateTimed(ctx context.Context, label, prompt string) string
}

// Params are the default generation parameters applied to every call.
type Params struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// ParamsFromConfig extracts generation parameters from configuration.
func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
	}
}

func (p Params) callOptions() []llms.CallOption {
	var opts []llms.CallOption
	if p.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(p.Temperature))
	}
	if p.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.MaxTokens))
	}
	if p.TopP > 0 {
		opts = append(opts, llms.WithTopP(p.TopP))
	}
	return opts
}

// Gateway wraps a langchaingo model for single-prompt text generation.
type Gateway struct {
	llm       llms.Model
	modelName string
	params    Params
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// Compile-time check that Gateway implements Generator.
var _ Generator = (*Gateway)(nil)

// NewGateway creates a gateway for the configured provider.
func NewGateway(cfg config.Config, collector *metrics.Collector, logger *slog.Logger) (*Gateway, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return NewGatewayWithModel(model, cfg.LLMModel, ParamsFromConfig(cfg), collector, logger), nil
}

// NewGatewayWithModel wraps an already constructed langchaingo model.
func NewGatewayWithModel(model llms.Model, modelName string, params Params, collector *metrics.Collector, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Gateway{
		llm:       model,
		modelName: modelName,
		params:    params,
		metrics:   collector,
		logger:    logger,
	}
}

// Generate sends a prompt to the model and returns the raw completion.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, g.params.callOptions()...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", wrapFatalError(err))
	}
	return response, nil
}

// GenerateTimed generates text, records elapsed time under label, and never
// fails: backend errors are logged and replaced by ErrorText.
func (g *Gateway) GenerateTimed(ctx context.Context, label, prompt string) string {
	start := time.Now()
	response, err := g.Generate(ctx, prompt)
	duration := time.Since(start)

	g.metrics.RecordTiming(label, duration, err != nil)

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrFatalAPI) {
			level = slog.LevelError
		}
		g.logger.Log(ctx, level, "llm call failed",
			"label", label, "model", g.modelName, "duration_ms", duration.Milliseconds(), "error", err)
		return ErrorText
	}

	g.logger.Info("llm call", "label", label, "model", g.modelName,
		"duration_ms", duration.Milliseconds(), "prompt_len", len(prompt), "response_len", len(response))
	return response
}

// Model returns the LLM model name.
func (g *Gateway) Model() string {
	return g.modelName
}

// Metrics returns the collector recording call timings.
func (g *Gateway) Metrics() *metrics.Collector {
	return g.metrics
}

// isFatalAPIError reports whether err looks like a credentials or billing failure.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"credit balance", "rate limit", "quota", "billing",
		"invalid api key", "authentication", "unauthorized", "401", "403",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrapFatalError(err error) error {
	if err == nil {
		return nil
	}
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %w", ErrFatalAPI, err)
	}
	return err
}
