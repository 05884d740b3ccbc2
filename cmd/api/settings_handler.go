package api

import (
	"context"
	"net/http"
	"time"

	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

const connectionTestPrompt = "Reply with the single word OK."

// SettingsHandler reports the effective runtime configuration without secrets
type SettingsHandler struct {
	config    *config.Config
	completer ai.Completer
	timeout   time.Duration
}

func NewSettingsHandler(cfg *config.Config, completer ai.Completer) *SettingsHandler {
	timeout := 15 * time.Second
	if cfg.CompletionTimeout > 0 && cfg.CompletionTimeout < timeout {
		timeout = cfg.CompletionTimeout
	}
	return &SettingsHandler{config: cfg, completer: completer, timeout: timeout}
}

// GetAISettings returns the completion provider configuration
// GET /api/settings/ai
func (h *SettingsHandler) GetAISettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":           h.config.AIProvider,
		"gemini_model":       h.config.GeminiModel,
		"gemini_configured":  h.config.GeminiAPIKey != "",
		"ollama_base_url":    h.config.OllamaBaseURL,
		"ollama_model":       h.config.OllamaModel,
		"completion_timeout": h.config.CompletionTimeout.String(),
	})
}

// GetIntegrations reports which external services are configured
// GET /api/settings/integrations
func (h *SettingsHandler) GetIntegrations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"imap":     h.config.IMAPConfigured(),
		"gmail":    h.config.GmailConfigured(),
		"redis":    h.config.RedisURL != "",
		"auth":     h.config.JWTSecret != "",
		"database": h.config.DatabaseDriver,
	})
}

// TestAIConnection sends a tiny prompt through the configured provider
// POST /api/settings/ai/test
func (h *SettingsHandler) TestAIConnection(c *gin.Context) {
	if h.completer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     "completion provider not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	_, err := h.completer.Complete(ctx, connectionTestPrompt, ai.GenerationConfig{
		Temperature:     0,
		MaxOutputTokens: 8,
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":  true,
		"provider":   h.config.AIProvider,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}
