// Package config provides environment configuration for the chat server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Default model settings match the models served by the local endpoint.
const (
	DefaultModel = "darkidol-llama-3.1-8b-instruct-1.2-uncensored"
)

// DefaultModels is the default enumerated set of selectable models.
var DefaultModels = []string{
	"darkidol-llama-3.1-8b-instruct-1.2-uncensored",
	"hermes-3-llama-3.2-3b",
	"llama-3-8b-lexi-uncensored",
}

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	Title              string

	// Inference settings
	LLMProvider     string
	LLMBaseURL      string
	LLMAPIKey       string
	AnthropicAPIKey string
	DefaultModel    string
	Models          []string

	// State files
	ConversationsFile string
	PersonasFile      string

	// Presentation
	UserAvatarURL      string
	AssistantAvatarURL string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	Environment string
	LogLevel    string
	LogFormat   string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool

	// NATS event feed
	NATSEnabled  bool
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string
}

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Minute),
		Title:              getEnv("APP_TITLE", "Athena Chat v1.0.1"),

		// Inference
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "http://localhost:1234/v1"),
		LLMAPIKey:       getEnv("LLM_API_KEY", "None"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", DefaultModel),
		Models:          getListEnv("MODELS", DefaultModels),

		// State files
		ConversationsFile: getEnv("CONVERSATIONS_FILE", "data/conversations.json"),
		PersonasFile:      getEnv("PERSONAS_FILE", "personas/all.json"),

		// Presentation
		UserAvatarURL:      getEnv("USER_AVATAR_URL", "https://files.catbox.moe/u2y7vf.jpg"),
		AssistantAvatarURL: getEnv("BOT_AVATAR_URL", "https://files.catbox.moe/x3kr0e.png"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		Environment: getEnv("ENV", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),

		// NATS
		NATSEnabled:  getBoolEnv("NATS_ENABLED", false),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),
	}

	cfg.DefaultModel = resolveDefaultModel(cfg.DefaultModel, cfg.Models)

	return cfg
}

// resolveDefaultModel falls back to the first listed model when the
// configured default is not selectable.
func resolveDefaultModel(def string, models []string) string {
	for _, m := range models {
		if m == def {
			return def
		}
	}
	if len(models) > 0 {
		return models[0]
	}
	return def
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
