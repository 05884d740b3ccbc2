package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authUsecase "rfp-backend/internal/auth/usecase"
	"rfp-backend/internal/testutil"
	vendorDelivery "rfp-backend/internal/vendors/delivery"
	"rfp-backend/internal/vendors/repository"
	"rfp-backend/internal/vendors/usecase"
	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	err error
}

func (s *stubCompleter) Complete(context.Context, string, ai.GenerationConfig) (string, error) {
	return "OK", s.err
}

func testConfig() *config.Config {
	return &config.Config{
		GinMode:           gin.TestMode,
		AIProvider:        "ollama",
		OllamaBaseURL:     "http://localhost:11434",
		OllamaModel:       "llama3",
		GeminiAPIKey:      "secret-key",
		CompletionTimeout: time.Minute,
		DatabaseDriver:    "sqlite",
	}
}

func newEngine(t *testing.T, tokens authUsecase.TokenUsecase, completer ai.Completer) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	vendors := usecase.NewVendorUsecase(repository.NewVendorRepository(testutil.NewDB(t)), nil)

	return NewHandler(Deps{
		Config:   cfg,
		Tokens:   tokens,
		Vendor:   vendorDelivery.NewVendorHandler(vendors),
		Settings: NewSettingsHandler(cfg, completer),
	}).Engine()
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newEngine(t, nil, nil)

	w := get(r, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/rfp/vendors", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutesOpenWithoutSecret(t *testing.T) {
	r := newEngine(t, nil, nil)

	w := get(r, "/api/rfp/vendors", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	tokens := authUsecase.NewTokenUsecase("secret")
	r := newEngine(t, tokens, nil)

	w := get(r, "/api/rfp/vendors", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.Issue("ops", time.Hour)
	require.NoError(t, err)
	w = get(r, "/api/rfp/vendors", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestAISettingsHideSecrets(t *testing.T) {
	r := newEngine(t, nil, nil)

	w := get(r, "/api/settings/ai", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-key")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ollama", body["provider"])
	assert.Equal(t, true, body["gemini_configured"])
}

func TestIntegrations(t *testing.T) {
	r := newEngine(t, nil, nil)

	w := get(r, "/api/settings/integrations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imap":false,"gmail":false,"redis":false,"auth":false,"database":"sqlite"}`, w.Body.String())
}

func TestAIConnection(t *testing.T) {
	tests := []struct {
		name      string
		completer ai.Completer
		want      int
		connected bool
	}{
		{"reachable", &stubCompleter{}, http.StatusOK, true},
		{"failing", &stubCompleter{err: errors.New("connection refused")}, http.StatusServiceUnavailable, false},
		{"missing", nil, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(t, nil, tt.completer)

			req := httptest.NewRequest(http.MethodPost, "/api/settings/ai/test", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.connected, body["connected"])
		})
	}
}
