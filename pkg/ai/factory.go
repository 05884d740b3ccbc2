package ai

import (
	"context"
	"fmt"

	"rfp-backend/pkg/gemini"

	"go.uber.org/zap"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	GeminiAPIKey string
	GeminiModel  string

	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewCompleter picks the provider from cfg. In auto mode Gemini is used
// when an API key is present, with Ollama as fallback.
func NewCompleter(ctx context.Context, cfg Config, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return newGeminiCompleter(ctx, cfg, logger)

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, logger), nil

	case ProviderAuto, "":
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, logger)
		if cfg.GeminiAPIKey == "" {
			return ollama, nil
		}
		g, err := newGeminiCompleter(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewFallbackService(g, ollama, logger), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// geminiCompleter adapts gemini.GeminiService to Completer.
type geminiCompleter struct {
	svc *gemini.GeminiService
}

func newGeminiCompleter(ctx context.Context, cfg Config, logger *zap.Logger) (*geminiCompleter, error) {
	svc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		return nil, err
	}
	return &geminiCompleter{svc: svc}, nil
}

func (g *geminiCompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	return g.svc.Generate(ctx, prompt, gemini.Options{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
}
