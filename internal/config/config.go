package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Global singleton so legacy call sites can read configuration without wiring
var globalConfig *Config

// Config holds all environment backed configuration for the chat server.
type Config struct {
	// HTTP Server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000" validate:"gte=1,lte=65535"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// PostgreSQL
	DatabaseURL       string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate       bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Auth
	JWTSecret   string        `env:"JWT_SECRET,notEmpty"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"ai-chat-bot"`
	JWTTokenTTL time.Duration `env:"JWT_TOKEN_TTL" envDefault:"24h"`

	// Inference backend
	InferenceBaseURL string        `env:"INFERENCE_BASE_URL" envDefault:"https://api.openai.com/v1" validate:"url"`
	InferenceAPIKey  string        `env:"INFERENCE_API_KEY"`
	DefaultModel     string        `env:"DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT" envDefault:"120s"`

	// Streaming: accumulated bytes pending persistence before a mid-stream
	// flush; 0 persists on every fragment.
	StreamFlushThreshold int `env:"STREAM_FLUSH_THRESHOLD" envDefault:"10"`

	// File storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKeyID  string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`

	// Observability / Logging
	ServiceName string `env:"SERVICE_NAME" envDefault:"ai-chat-bot"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch strings.ToLower(cfg.StorageBackend) {
	case "local":
		if strings.TrimSpace(cfg.UploadDir) == "" {
			return nil, errors.New("UPLOAD_DIR must be set for the local storage backend")
		}
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("S3_BUCKET must be set for the s3 storage backend")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.StreamFlushThreshold < 0 {
		return nil, errors.New("STREAM_FLUSH_THRESHOLD must not be negative")
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// Get returns the last loaded configuration, or nil before Load succeeds.
func Get() *Config {
	return globalConfig
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
