package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	StoreDriver   string
	LocalStoreDir string
	SQLitePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string

	LLMProvider  string
	LLMModel     string
	GoogleAPIKey string
	OpenAIAPIKey string

	SessionSecret string
	CVMaxBytes    int64

	NotifyDriver string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIBaseURL          string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	storeDriver := normalizeStoreDriver(getEnv("STORE_DRIVER", "file"))
	dbURL := os.Getenv("DATABASE_URL")

	if storeDriver == "postgres" && dbURL == "" {
		log.Printf("STORE_DRIVER=postgres requires DATABASE_URL")
	}
	secret := os.Getenv("SESSION_SECRET")
	if env == "production" && secret == "" {
		log.Printf("SESSION_SECRET is required in production")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		StoreDriver:        storeDriver,
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/profileplus.db"),
		DatabaseURL:        dbURL,
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", "profileplus/"),
		LLMProvider:        normalizeLLMProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:           getEnv("LLM_MODEL", ""),
		GoogleAPIKey:       firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("API_KEY")),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		SessionSecret:      secret,
		CVMaxBytes:         int64(getEnvInt("CV_MAX_BYTES", 5<<20)),
		NotifyDriver:       normalizeNotifyDriver(getEnv("NOTIFY_DRIVER", "log")),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "contact_requests"),
		AMQPQueue:          getEnv("AMQP_QUEUE", "contact_notifications"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIBaseURL:          getEnv("UI_BASE_URL", "http://localhost:5173/"),
	}
}

// IsDevLike reports whether env allows demo shortcuts.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory", "mem":
		return "memory"
	case "sqlite":
		return "sqlite"
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "redis":
		return "redis"
	case "s3":
		return "s3"
	default:
		return "file"
	}
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "mock":
		return "mock"
	default:
		return "gemini"
	}
}

func normalizeNotifyDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "amqp", "rabbitmq":
		return "amqp"
	default:
		return "log"
	}
}
