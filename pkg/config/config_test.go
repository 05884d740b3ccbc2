package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "AI_PROVIDER", "GEMINI_MODEL", "IMAP_PORT", "INGEST_LIMIT", "COMPLETION_TIMEOUT", "RFP_SUBJECT_PATTERNS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "auto", cfg.AIProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.Equal(t, 10, cfg.IngestLimit)
	assert.Equal(t, 60*time.Second, cfg.CompletionTimeout)
	assert.Empty(t, cfg.SubjectPatterns)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("INGEST_LIMIT", "25")
	t.Setenv("COMPLETION_TIMEOUT", "5s")
	t.Setenv("RFP_SUBJECT_PATTERNS", `RFP\s*#(\d+); Ref-(\d{1,6}) ;`)
	t.Setenv("IMAP_USER", "procurement@example.com")
	t.Setenv("IMAP_PASSWORD", "secret")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 25, cfg.IngestLimit)
	assert.Equal(t, 5*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, []string{`RFP\s*#(\d+)`, `Ref-(\d{1,6})`}, cfg.SubjectPatterns)
	assert.True(t, cfg.IMAPConfigured())
	assert.False(t, cfg.GmailConfigured())
}
