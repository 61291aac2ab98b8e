package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported drivers and providers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"

	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"

	// DefaultJWTSecret is only acceptable outside production
	DefaultJWTSecret = "headcook-dev-secret"
)

// Config holds all configuration for the application
type Config struct {
	Env       Environment
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	LLM       LLMConfig       `envPrefix:"LLM_"`
	Image     ImageConfig     `envPrefix:"IMAGE_"`
	Quota     QuotaConfig     `envPrefix:"QUOTA_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Storage   StorageConfig   `envPrefix:"S3_"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"PORT" envDefault:"3001"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig contains user store connection parameters.
type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME" envDefault:"headcookaidb"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	Path            string        `env:"PATH" envDefault:"headcook.db"`
	MongoURI        string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"headcookaidb"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig contains Redis connection parameters. Redis is optional.
type RedisConfig struct {
	URL      string `env:"URL"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether a Redis server has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

// AuthConfig selects and configures the identity provider.
type AuthConfig struct {
	Provider                string        `env:"PROVIDER" envDefault:"local"`
	JWTSecret               string        `env:"JWT_SECRET"`
	TokenTTL                time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	FirebaseProjectID       string        `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
}

// LLMConfig configures the recipe generation upstream.
type LLMConfig struct {
	Provider    string        `env:"PROVIDER" envDefault:"openai"`
	APIKey      string        `env:"API_KEY"`
	APIURL      string        `env:"API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	Model       string        `env:"MODEL" envDefault:"gpt-3.5-turbo"`
	GeminiModel string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"1500"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.7"`
	RecipeCount int           `env:"RECIPE_COUNT" envDefault:"3"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// ImageConfig configures the image generation upstream.
type ImageConfig struct {
	APIKey      string        `env:"API_KEY"`
	APIURL      string        `env:"API_URL" envDefault:"https://api.openai.com/v1/images/generations"`
	Model       string        `env:"MODEL" envDefault:"dall-e-3"`
	Size        string        `env:"SIZE" envDefault:"1024x1024"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"50m"`
	FanOutLimit int           `env:"FAN_OUT_LIMIT" envDefault:"4"`
}

// QuotaConfig holds the free-tier search policy. Zero means unlimited.
type QuotaConfig struct {
	FreeSearches int64 `env:"FREE_SEARCHES" envDefault:"10"`
}

// RateLimitConfig bounds request bursts per identity.
type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Limit   int           `env:"LIMIT" envDefault:"30"`
	Window  time.Duration `env:"WINDOW" envDefault:"1h"`
}

// StorageConfig configures the S3 bucket generated images are mirrored to.
// An empty bucket disables mirroring.
type StorageConfig struct {
	Bucket string `env:"BUCKET_NAME"`
	Region string `env:"REGION" envDefault:"us-east-1"`
}

// LoadConfig creates a new Config from environment variables, filling empty
// secrets from the Docker secrets directory.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Env = GetEnvironment()

	applySecrets(cfg)

	if cfg.Auth.JWTSecret == "" && cfg.Env != Production {
		cfg.Auth.JWTSecret = DefaultJWTSecret
	}
	// The image API shares the OpenAI key unless configured separately
	if cfg.Image.APIKey == "" && cfg.LLM.Provider == LLMProviderOpenAI {
		cfg.Image.APIKey = cfg.LLM.APIKey
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applySecrets(cfg *Config) {
	fill := func(field *string, name string) {
		if *field == "" {
			*field = readSecret(name)
		}
	}

	fill(&cfg.Auth.JWTSecret, "jwt_secret")
	fill(&cfg.Database.Password, "db_password")
	fill(&cfg.Redis.Password, "redis_password")
	fill(&cfg.Image.APIKey, "openai_api_key")
	if cfg.LLM.Provider == LLMProviderGemini {
		fill(&cfg.LLM.APIKey, "gemini_api_key")
	} else {
		fill(&cfg.LLM.APIKey, "openai_api_key")
	}
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
