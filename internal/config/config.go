package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	Embedding EmbeddingConfig
	Ingest    IngestConfig
	Rag       RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
	LogLevel   string
}

type AuthConfig struct {
	// Empty disables the JWT gate on write endpoints.
	JWTSecret string
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string
	LLMBaseURL    string
	LLMAPIKey     string
	Temperature   float64
	MaxTokens     int
	MaxRoundTrips int
	PromptsFile   string
}

type EmbeddingConfig struct {
	Provider   string // "openai", "ollama" or "gemini"
	Model      string
	BaseURL    string
	APIKey     string
	Dimension  int
	RatePerSec float64
	Workers    int
	CacheTTL   time.Duration
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type RagConfig struct {
	IndexName       string
	SearchTopK      int
	SearchThreshold float64
	// HnswEfSearch is the minimum candidate list size of an ANN query.
	HnswEfSearch int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4.1-mini"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:     getEnv("OPENAI_API_KEY", ""),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 0),
			MaxRoundTrips: getEnvAsInt("CHAT_MAX_ROUND_TRIPS", 2),
			PromptsFile:   getEnv("PROMPTS_FILE", ""),
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:     getEnv("EMBEDDING_API_KEY", getEnv("OPENAI_API_KEY", "")),
			Dimension:  getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			RatePerSec: getEnvAsFloat("EMBEDDING_RATE_PER_SEC", 10),
			Workers:    getEnvAsInt("EMBEDDING_WORKERS", 4),
			CacheTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		},
		Ingest: IngestConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1200),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Rag: RagConfig{
			IndexName:       getEnv("RAG_INDEX_NAME", "course_catalog"),
			SearchTopK:      getEnvAsInt("SEARCH_TOP_K", 5),
			SearchThreshold: getEnvAsFloat("SEARCH_THRESHOLD", 0.3),
			HnswEfSearch:    getEnvAsInt("HNSW_EF_SEARCH", 100),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
