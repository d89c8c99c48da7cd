package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Recipe sources
	ExternalAPIURL    string
	BackendURL        string
	RequestTimeout    time.Duration
	RetryMaxElapsed   time.Duration
	ExternalRateLimit float64
	ExternalBurst     int
	ImageRewriteFrom  string
	ImageRewriteTo    string

	// Audit database configuration
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	RedisURL           string
	SubmitLimitPerHour int

	// Session configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage: "backend" or "s3"
	ImageStore   string
	S3BucketName string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadEnvConfig(cfg)
		cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = os.Getenv("JWT_SECRET")
		}
	case Development, Test:
		// .env is optional; real environment variables win
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		loadEnvConfig(cfg)
		cfg.JWTSecret = firstNonEmpty(os.Getenv("JWT_SECRET"), readSecret("jwt_secret"))
		cfg.DBPassword = firstNonEmpty(cfg.DBPassword, readSecret("db_password"))
		cfg.RedisPassword = firstNonEmpty(cfg.RedisPassword, readSecret("redis_password"))
	case Production:
		loadEnvConfig(cfg)
		loadProdSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig reads the non-secret settings shared by every environment
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	cfg.ExternalAPIURL = getEnv("EXTERNAL_API_URL", "https://dummyjson.com")
	cfg.BackendURL = getEnv("BACKEND_URL", "http://localhost")
	cfg.RequestTimeout = getDuration("REQUEST_TIMEOUT", 20*time.Second)
	cfg.RetryMaxElapsed = getDuration("RETRY_MAX_ELAPSED", 5*time.Second)
	cfg.ExternalRateLimit = getFloat("EXTERNAL_RATE_LIMIT", 10)
	cfg.ExternalBurst = getInt("EXTERNAL_BURST", 5)
	cfg.ImageRewriteFrom = getEnv("IMAGE_REWRITE_FROM", "http://localhost")
	cfg.ImageRewriteTo = getEnv("IMAGE_REWRITE_TO", "http://10.0.2.2")

	cfg.DBDriver = getEnv("DB_DRIVER", "sqlite")
	cfg.DBPath = getEnv("DB_PATH", "recipehub.db")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnv("DB_NAME", "recipehub")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getInt("REDIS_DB", 0)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.SubmitLimitPerHour = getInt("SUBMIT_LIMIT_PER_HOUR", 30)

	cfg.TokenTTL = getDuration("TOKEN_TTL", 24*time.Hour)

	cfg.ImageStore = getEnv("IMAGE_STORE", "backend")
	cfg.S3BucketName = getEnv("S3_BUCKET_NAME", "recipehub-images")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", GetEnvironment().DefaultLogFormat())
}

// loadProdSecrets loads sensitive values from Docker secrets only
func loadProdSecrets(cfg *Config) {
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.DBPassword = readSecret("db_password")
	cfg.RedisPassword = readSecret("redis_password")
	if url := readSecret("redis_url"); url != "" {
		cfg.RedisURL = url
	}
}

// RedisEnabled reports whether a redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// PostgresDSN builds the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
