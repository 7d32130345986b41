package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by LLM_PROVIDER.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	KnowledgeCacheTTL  time.Duration
	SessionTTL         time.Duration
	CORSAllowedOrigins []string
	AdminJWTSecret     string
	ChatRateLimitRPS   float64
	ChatRateLimitBurst int
	WidgetJSPath       string

	// Remote PHP backend. When set, knowledge and chatbot config are read from it.
	BackendBaseURL string
	BackendTimeout time.Duration

	// Completion provider
	LLMProvider           string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	BedrockModelID        string
	GeminiAPIKey          string
	GeminiModel           string
	CompletionTimeout     time.Duration
	CompletionMaxTokens   int
	CompletionTemperature float64
	HistoryWindow         int

	// Direct human contact surfaced when the completion call fails
	ContactEmail    string
	ContactWhatsApp string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// S3 bucket for PII-scrubbed transcript copies; empty disables archiving.
	ArchiveBucket string

	// Lead notification email
	EmailProvider   string
	SendGridAPIKey  string
	NotifyFromEmail string
	NotifyFromName  string
	LeadNotifyEmail string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		KnowledgeCacheTTL:  getEnvAsDuration("KNOWLEDGE_CACHE_TTL", 5*time.Minute),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		ChatRateLimitRPS:   getEnvAsFloat("CHAT_RATE_LIMIT_RPS", 1),
		ChatRateLimitBurst: getEnvAsInt("CHAT_RATE_LIMIT_BURST", 5),
		WidgetJSPath:       getEnv("WIDGET_JS_PATH", ""),

		BackendBaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 5*time.Second),

		LLMProvider:           strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ProviderOpenAI))),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		BedrockModelID:        getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		CompletionTimeout:     getEnvAsDuration("COMPLETION_TIMEOUT", 20*time.Second),
		CompletionMaxTokens:   getEnvAsInt("COMPLETION_MAX_TOKENS", 500),
		CompletionTemperature: getEnvAsFloat("COMPLETION_TEMPERATURE", 0.7),
		HistoryWindow:         getEnvAsInt("HISTORY_WINDOW", 10),

		ContactEmail:    getEnv("CONTACT_EMAIL", "hello@agency.example"),
		ContactWhatsApp: getEnv("CONTACT_WHATSAPP", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		EmailProvider:   strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:  getEnv("NOTIFY_FROM_NAME", "Agency Chat"),
		LeadNotifyEmail: getEnv("LEAD_NOTIFY_EMAIL", ""),
	}
}

// Validate reports configuration that must stop the process at startup.
// A completion provider without its credential disables the chat feature.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	case ProviderBedrock:
		if strings.TrimSpace(c.BedrockModelID) == "" {
			errs = append(errs, errors.New("BEDROCK_MODEL_ID is required when LLM_PROVIDER=bedrock"))
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.CompletionTimeout <= 0 {
		errs = append(errs, errors.New("COMPLETION_TIMEOUT must be positive"))
	}
	if c.EmailProvider == "sendgrid" && strings.TrimSpace(c.SendGridAPIKey) == "" {
		errs = append(errs, errors.New("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
