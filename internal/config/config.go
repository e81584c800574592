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
	Keys      APIKeys
	Ai        AIConfig
	Timeouts  TimeoutConfig
	Session   SessionConfig
	Ranking   RankingConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IndexTopic         string // in-process catalog re-index topic
	SeedFile           string // optional catalog seed applied at startup
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI    string
	JwtSecret string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string
	EmbeddingDimensions int
	OllamaBaseURL       string
	OpenAIBaseURL       string
	LLMProvider         string // "ollama" or "openai"
	LLMModel            string
	VisionModel         string
	EmbeddingCacheTTL   time.Duration
}

type TimeoutConfig struct {
	Embedding   time.Duration
	Completion  time.Duration
	VectorStore time.Duration
}

type SessionConfig struct {
	Backend       string // "postgres" or "memory"
	TTL           time.Duration
	PurgeInterval time.Duration
}

type RankingConfig struct {
	BoostFactor     float64
	NullPricePolicy string // "pass" or "fail"
}

type RetrievalConfig struct {
	VectorStore      string // "pgvector" or "memory"
	Headroom         int    // multiplier applied to the requested count before post-filtering
	DefaultTopK      int
	MaxTopK          int
	HistoryForPrompt int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm_turns.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IndexTopic:         getEnv("INDEX_MENU_ITEM_TOPIC_NAME", "INDEX_MENU_ITEM"),
			SeedFile:           getEnv("CATALOG_SEED_FILE", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:    getEnv("OPENAI_API_KEY", ""),
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			VisionModel:         getEnv("VISION_MODEL", ""),
			EmbeddingCacheTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", time.Hour),
		},
		Timeouts: TimeoutConfig{
			Embedding:   getEnvAsDuration("EMBEDDING_TIMEOUT", 10*time.Second),
			Completion:  getEnvAsDuration("COMPLETION_TIMEOUT", 60*time.Second),
			VectorStore: getEnvAsDuration("VECTOR_STORE_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			Backend:       getEnv("SESSION_BACKEND", "postgres"),
			TTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			PurgeInterval: getEnvAsDuration("SESSION_PURGE_INTERVAL", time.Hour),
		},
		Ranking: RankingConfig{
			BoostFactor:     getEnvAsFloat("RANK_BOOST_FACTOR", 0.5),
			NullPricePolicy: getEnv("RANK_NULL_PRICE_POLICY", "pass"),
		},
		Retrieval: RetrievalConfig{
			VectorStore:      getEnv("VECTOR_STORE", "pgvector"),
			Headroom:         getEnvAsInt("RETRIEVAL_HEADROOM", 10),
			DefaultTopK:      getEnvAsInt("RETRIEVAL_DEFAULT_TOP_K", 5),
			MaxTopK:          getEnvAsInt("RETRIEVAL_MAX_TOP_K", 20),
			HistoryForPrompt: getEnvAsInt("PROMPT_HISTORY_MESSAGES", 10),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
