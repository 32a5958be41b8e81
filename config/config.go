package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecretKey string
	JWTTTL       time.Duration

	ServerPort     int
	AllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	ReconcileInterval   time.Duration
	SubmitRatePerMinute int
	SubmitRateBurst     int
}

// R2Enabled reports whether all Cloudflare R2 credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	cfg, err := LoadStore()
	if err != nil {
		return nil, err
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	if cfg.ServerPort, err = getInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	if cfg.JWTTTL, err = getDuration("JWT_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval < time.Second {
		return nil, fmt.Errorf("RECONCILE_INTERVAL must be at least 1s, got %v", cfg.ReconcileInterval)
	}

	if cfg.SubmitRatePerMinute, err = getInt("SUBMIT_RATE_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.SubmitRateBurst, err = getInt("SUBMIT_RATE_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.SubmitRatePerMinute <= 0 || cfg.SubmitRateBurst <= 0 {
		return nil, fmt.Errorf("SUBMIT_RATE_PER_MINUTE and SUBMIT_RATE_BURST must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadStore reads only the settings needed to open the store (used by the seed CLI).
func LoadStore() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver:       getEnv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "slot_arena"),
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable is not set")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q, expected postgres, mongo or memory", cfg.StoreDriver)
	}
	return cfg, nil
}
