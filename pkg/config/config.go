package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string

	AIProvider        string // "gemini", "ollama" or "auto"
	GeminiAPIKey      string
	GeminiModel       string
	OllamaBaseURL     string
	OllamaModel       string
	CompletionTimeout time.Duration

	IMAPHost        string
	IMAPPort        int
	IMAPUser        string
	IMAPPassword    string
	IMAPMailbox     string
	IMAPTimeout     time.Duration
	IngestLimit     int
	SubjectPatterns []string

	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	MailFrom          string

	RedisURL               string
	RecommendationCacheTTL time.Duration

	JWTSecret string
}

// Load reads configuration from the process environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:      v.GetString("PORT"),
		GinMode:   v.GetString("GIN_MODE"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DatabaseDriver: strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),

		AIProvider:        strings.ToLower(v.GetString("AI_PROVIDER")),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		OllamaBaseURL:     v.GetString("OLLAMA_BASE_URL"),
		OllamaModel:       v.GetString("OLLAMA_MODEL"),
		CompletionTimeout: v.GetDuration("COMPLETION_TIMEOUT"),

		IMAPHost:        v.GetString("IMAP_HOST"),
		IMAPPort:        v.GetInt("IMAP_PORT"),
		IMAPUser:        v.GetString("IMAP_USER"),
		IMAPPassword:    v.GetString("IMAP_PASSWORD"),
		IMAPMailbox:     v.GetString("IMAP_MAILBOX"),
		IMAPTimeout:     v.GetDuration("IMAP_TIMEOUT"),
		IngestLimit:     v.GetInt("INGEST_LIMIT"),
		SubjectPatterns: splitPatterns(v.GetString("RFP_SUBJECT_PATTERNS")),

		GmailClientID:     v.GetString("GMAIL_CLIENT_ID"),
		GmailClientSecret: v.GetString("GMAIL_CLIENT_SECRET"),
		GmailRefreshToken: v.GetString("GMAIL_REFRESH_TOKEN"),
		MailFrom:          v.GetString("MAIL_FROM"),

		RedisURL:               v.GetString("REDIS_URL"),
		RecommendationCacheTTL: v.GetDuration("RECOMMENDATION_CACHE_TTL"),

		JWTSecret: v.GetString("JWT_SECRET"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=rfp port=5432 sslmode=disable")

	v.SetDefault("AI_PROVIDER", "auto")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "llama3")
	v.SetDefault("COMPLETION_TIMEOUT", "60s")

	v.SetDefault("IMAP_HOST", "imap.gmail.com")
	v.SetDefault("IMAP_PORT", 993)
	v.SetDefault("IMAP_MAILBOX", "INBOX")
	v.SetDefault("IMAP_TIMEOUT", "30s")
	v.SetDefault("INGEST_LIMIT", 10)

	v.SetDefault("RECOMMENDATION_CACHE_TTL", "1h")
}

// splitPatterns splits RFP_SUBJECT_PATTERNS on ";" so that regular
// expressions may still contain commas.
func splitPatterns(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// IMAPConfigured reports whether enough settings exist to open a mailbox.
func (c *Config) IMAPConfigured() bool {
	return c.IMAPHost != "" && c.IMAPUser != "" && c.IMAPPassword != ""
}

func (c *Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}
