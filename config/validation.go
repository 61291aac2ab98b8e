package config

import (
	"errors"
	"fmt"
	"slices"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	supportedDrivers      = []string{DriverSQLite, DriverPostgres, DriverMongo}
	supportedAuth         = []string{AuthProviderLocal, AuthProviderFirebase}
	supportedLLMProviders = []string{LLMProviderOpenAI, LLMProviderGemini}
)

// ValidateConfig checks if the configuration meets the requirements for its environment.
// All problems are reported at once.
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !slices.Contains(supportedDrivers, cfg.Database.Driver) {
		add("DB_DRIVER", "unsupported driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == DriverPostgres && cfg.Database.Password == "" && cfg.Env == Production {
		add("DB_PASSWORD", "db_password secret is required")
	}

	switch cfg.Auth.Provider {
	case AuthProviderLocal:
		if cfg.Auth.JWTSecret == "" {
			add("AUTH_JWT_SECRET", "jwt_secret secret is required")
		}
		if cfg.Env == Production && cfg.Auth.JWTSecret == DefaultJWTSecret {
			add("AUTH_JWT_SECRET", "the development secret must not be used in production")
		}
	case AuthProviderFirebase:
		if cfg.Auth.FirebaseProjectID == "" {
			add("AUTH_FIREBASE_PROJECT_ID", "required for the firebase provider")
		}
	default:
		add("AUTH_PROVIDER", "unsupported provider %q, expected one of %v", cfg.Auth.Provider, supportedAuth)
	}

	if !slices.Contains(supportedLLMProviders, cfg.LLM.Provider) {
		add("LLM_PROVIDER", "unsupported provider %q", cfg.LLM.Provider)
	}
	if !IsTest() {
		if cfg.LLM.APIKey == "" {
			add("LLM_API_KEY", "an API key is required outside the test environment")
		}
		if cfg.Image.APIKey == "" {
			add("IMAGE_API_KEY", "an API key is required outside the test environment")
		}
	}
	if cfg.LLM.MaxTokens <= 0 {
		add("LLM_MAX_TOKENS", "must be positive")
	}
	if cfg.LLM.Timeout <= 0 || cfg.Image.Timeout <= 0 {
		add("TIMEOUT", "upstream timeouts must be positive")
	}
	if cfg.Quota.FreeSearches < 0 {
		add("QUOTA_FREE_SEARCHES", "must not be negative")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.Limit <= 0 || cfg.RateLimit.Window <= 0) {
		add("RATE_LIMIT", "limit and window must be positive when rate limiting is enabled")
	}

	return errors.Join(errs...)
}
