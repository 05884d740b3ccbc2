package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OllamaService implements Completer against a local Ollama server.
type OllamaService struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaService creates a new Ollama client
func NewOllamaService(baseURL, model string, logger *zap.Logger) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(2*time.Minute).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OllamaService{http: client, model: model, logger: logger.Named("ollama")}
}

// Complete implements Completer
func (o *OllamaService) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	var result ollamaGenerateResponse
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(ollamaGenerateRequest{
			Model:   o.model,
			Prompt:  prompt,
			Stream:  false,
			Options: ollamaOptions(cfg),
		}).
		SetResult(&result).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode(), resp.String())
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return "", errors.New("ollama returned empty response")
	}

	o.logger.Debug("ollama response received",
		zap.String("model", o.model),
		zap.Int("response_len", len(text)),
		zap.Duration("elapsed", resp.Time()),
	)
	return text, nil
}

func ollamaOptions(cfg GenerationConfig) map[string]any {
	opts := map[string]any{}
	if cfg.Temperature > 0 {
		opts["temperature"] = cfg.Temperature
	}
	if cfg.TopP > 0 {
		opts["top_p"] = cfg.TopP
	}
	if cfg.TopK > 0 {
		opts["top_k"] = int(cfg.TopK)
	}
	if cfg.MaxOutputTokens > 0 {
		opts["num_predict"] = cfg.MaxOutputTokens
	}
	return opts
}
