package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	// APIKey is the static bearer token; empty disables auth.
	APIKey   string
	Timezone *time.Location
	// Completion provider: "openai" or "ollama"
	LLMProvider    string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OllamaBaseURL  string
	// Embeddings and vector search
	EmbeddingModel     string
	EmbeddingDim       int
	QdrantURL          string
	SearchMinScore     float64
	VectorContextCount int
	// Summaries
	SummaryMaxTokens        int
	SummaryCompressionRatio float64
	// Opening-message session state
	RedisURL               string
	OpeningSessionCapacity int
	OpeningSessionTTL      time.Duration
	// Personas
	PersonasFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                    envInt("PORT", 8080),
		DBPath:                  envStr("COMPANION_DB_PATH", "/data/companion.db"),
		LogLevel:                envStr("LOG_LEVEL", "info"),
		APIKey:                  os.Getenv("API_KEY"),
		LLMProvider:             strings.ToLower(envStr("LLM_PROVIDER", "openai")),
		LLMModel:                envStr("LLM_MODEL", "gpt-4-turbo"),
		LLMTemperature:          envFloat("LLM_TEMPERATURE", 0.8),
		LLMMaxTokens:            envInt("LLM_MAX_TOKENS", 500),
		OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:           os.Getenv("OPENAI_BASE_URL"),
		OllamaBaseURL:           envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbeddingModel:          envStr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:            envInt("EMBEDDING_DIM", 1536),
		QdrantURL:               envStr("QDRANT_URL", "http://localhost:6333"),
		SearchMinScore:          envFloat("SEARCH_MIN_SCORE", 0.3),
		VectorContextCount:      envInt("VECTOR_CONTEXT_COUNT", 10),
		SummaryMaxTokens:        envInt("SUMMARY_MAX_TOKENS", 1000),
		SummaryCompressionRatio: envFloat("SUMMARY_COMPRESSION_RATIO", 0.1),
		RedisURL:                os.Getenv("REDIS_URL"),
		OpeningSessionCapacity:  envInt("OPENING_SESSION_CAPACITY", 10000),
		OpeningSessionTTL:       envDuration("OPENING_SESSION_TTL", 24*time.Hour),
		PersonasFile:            os.Getenv("PERSONAS_FILE"),
	}

	loc, err := time.LoadLocation(envStr("TZ", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("config validation: TZ: %w", err)
	}
	cfg.Timezone = loc

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("COMPANION_DB_PATH must not be empty")
	}
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "ollama":
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or ollama, got %q", c.LLMProvider)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %f", c.LLMTemperature)
	}
	if c.LLMMaxTokens < 1 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.SearchMinScore < 0 || c.SearchMinScore > 1 {
		return fmt.Errorf("SEARCH_MIN_SCORE must be within [0, 1], got %f", c.SearchMinScore)
	}
	if c.VectorContextCount < 0 {
		return fmt.Errorf("VECTOR_CONTEXT_COUNT must not be negative, got %d", c.VectorContextCount)
	}
	if c.OpeningSessionCapacity < 1 {
		return fmt.Errorf("OPENING_SESSION_CAPACITY must be positive, got %d", c.OpeningSessionCapacity)
	}
	if c.SummaryCompressionRatio <= 0 || c.SummaryCompressionRatio > 1 {
		return fmt.Errorf("SUMMARY_COMPRESSION_RATIO must be within (0, 1], got %f", c.SummaryCompressionRatio)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
