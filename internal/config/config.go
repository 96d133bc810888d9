package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBDriver string
	DBPath   string
	// DatabaseURL is the postgres DSN, used when DBDriver is "postgres".
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	UploadDir   string
	MaxUploadMB int

	LLMProvider     string
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMTimeout      time.Duration
	LLMMaxAttempts  int

	QuestionsPerDocument  int
	ChunkSize             int
	GenerationWorkerCount int
	GenerationQueueSize   int

	HistoryWindow       int
	BattleQuestionCount int

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	AMQPURL       string
	AMQPExchange  string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBDriver:              envOr("DB_DRIVER", "sqlite3"),
		DBPath:                envOr("DB_PATH", "file:studyrpg.db"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		LogFormat:             envOr("LOG_FORMAT", "text"),
		UploadDir:             envOr("UPLOAD_DIR", "uploads"),
		MaxUploadMB:           envIntOr("MAX_UPLOAD_MB", 16),
		LLMProvider:           envOr("LLM_PROVIDER", "gemini"),
		LLMModel:              os.Getenv("LLM_MODEL"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		LLMTimeout:            envDurationOr("LLM_TIMEOUT", 60*time.Second),
		LLMMaxAttempts:        envIntOr("LLM_MAX_ATTEMPTS", 3),
		QuestionsPerDocument:  envIntOr("QUESTIONS_PER_DOCUMENT", 5),
		ChunkSize:             envIntOr("CHUNK_SIZE", 4000),
		GenerationWorkerCount: envIntOr("GENERATION_WORKER_COUNT", 2),
		GenerationQueueSize:   envIntOr("GENERATION_QUEUE_SIZE", 32),
		HistoryWindow:         envIntOr("HISTORY_WINDOW", 10),
		BattleQuestionCount:   envIntOr("BATTLE_QUESTION_COUNT", 5),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		AMQPURL:               os.Getenv("AMQP_URL"),
		AMQPExchange:          envOr("AMQP_EXCHANGE", "studyrpg.events"),
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite3":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1, got %d", c.MaxUploadMB)
	}
	switch c.LLMProvider {
	case "gemini", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of gemini, openai, anthropic, mock, got %q", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLMMaxAttempts < 1 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be at least 1, got %d", c.LLMMaxAttempts)
	}
	if c.QuestionsPerDocument < 1 || c.QuestionsPerDocument > 50 {
		return fmt.Errorf("QUESTIONS_PER_DOCUMENT must be between 1 and 50, got %d", c.QuestionsPerDocument)
	}
	if c.ChunkSize < 100 {
		return fmt.Errorf("CHUNK_SIZE must be at least 100, got %d", c.ChunkSize)
	}
	if c.GenerationWorkerCount < 1 {
		return fmt.Errorf("GENERATION_WORKER_COUNT must be at least 1, got %d", c.GenerationWorkerCount)
	}
	if c.GenerationQueueSize < 1 {
		return fmt.Errorf("GENERATION_QUEUE_SIZE must be at least 1, got %d", c.GenerationQueueSize)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("HISTORY_WINDOW must be at least 1, got %d", c.HistoryWindow)
	}
	if c.BattleQuestionCount < 1 {
		return fmt.Errorf("BATTLE_QUESTION_COUNT must be at least 1, got %d", c.BattleQuestionCount)
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
