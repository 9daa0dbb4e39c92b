package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/user-service/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidPoolSize    = errors.New("DB_POOL_MIN must not exceed DB_POOL_MAX")
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type AppConfig struct {
	Env              string
	HTTPPort         string
	ClientURL        string
	ExternalHostname string
	DatabaseURL      string
	JWTSecret        string
	JWTExpiresIn     string
	RateLimitWindow  time.Duration
	RateLimitMax     int
	LogLevel         string
	LogDir           string
	DBPoolMaxConns   int32
	DBPoolMinConns   int32
	MigrationsFile   string
	MaxRequestSize   int64
}

func (c AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c AppConfig) IsTest() bool {
	return c.Env == EnvTest
}

// AllowedOrigins lists the CORS origins. Production also accepts the
// externally visible hostname assigned by the hosting platform.
func (c AppConfig) AllowedOrigins() []string {
	origins := []string{c.ClientURL}
	if c.IsProduction() && c.ExternalHostname != "" {
		origins = append(origins, "https://"+c.ExternalHostname)
	}
	return origins
}

// LoadDotEnv reads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func LoadAppConfig() (AppConfig, error) {
	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))

	cfg := AppConfig{
		Env:              env,
		HTTPPort:         getEnv("PORT", constants.DefaultHTTPPort),
		ClientURL:        getEnv("CLIENT_URL", constants.DefaultClientURL),
		ExternalHostname: getEnv("RENDER_EXTERNAL_HOSTNAME", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", constants.DefaultJWTSecret),
		JWTExpiresIn:     getEnv("JWT_EXPIRES_IN", constants.DefaultJWTExpiresIn),
		RateLimitWindow:  getMillisEnv("RATE_LIMIT_WINDOW_MS", constants.DefaultRateLimitWindow),
		RateLimitMax:     getIntEnv("RATE_LIMIT_MAX", constants.DefaultRateLimitMax),
		LogLevel:         getEnv("LOG_LEVEL", constants.DefaultLogLevel),
		LogDir:           getEnv("LOG_DIR", constants.DefaultLogDir),
		DBPoolMaxConns:   int32(getIntEnv("DB_POOL_MAX", constants.DBPoolMaxConns)),
		DBPoolMinConns:   int32(getIntEnv("DB_POOL_MIN", constants.DBPoolMinConns)),
		MigrationsFile:   getEnv("MIGRATIONS_FILE", ""),
		MaxRequestSize:   getInt64Env("MAX_REQUEST_SIZE", constants.DefaultMaxRequestSize),
	}

	if cfg.IsProduction() {
		if err := requireAll("DATABASE_URL", "JWT_SECRET", "CLIENT_URL"); err != nil {
			return AppConfig{}, err
		}
		if err := validateJWTSecret(cfg.JWTSecret); err != nil {
			return AppConfig{}, err
		}
	}

	if cfg.DatabaseURL == "" {
		return AppConfig{}, fmt.Errorf("%w: %s", ErrMissingRequiredEnv, "DATABASE_URL")
	}

	if cfg.DBPoolMinConns > cfg.DBPoolMaxConns {
		return AppConfig{}, fmt.Errorf("%w: min=%d max=%d", ErrInvalidPoolSize, cfg.DBPoolMinConns, cfg.DBPoolMaxConns)
	}

	return cfg, nil
}

func requireAll(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getMillisEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
