package constants

import "time"

const (
	JWTSecretMinLength = 32

	NameMaxLength     = 255
	EmailMaxLength    = 255
	PasswordMaxLength = 255

	DefaultMaxRequestSize = 10 * 1024

	DBPoolMaxConns              = 20
	DBPoolMinConns              = 2
	DBPoolConnMaxIdleTime       = 30 * time.Second
	DBPoolConnectTimeout        = 2 * time.Second
	DBPoolManagedConnectTimeout = 5 * time.Second
	DBPoolMaxConnUses           = 7500
	DBPoolKeepAlive             = 30 * time.Second
	DBPoolHealthCheck           = 1 * time.Minute
	DBPoolMaxAttempts           = 10
	DBPoolRetryDelay            = 1 * time.Second
	DBPoolRetryMaxDelay         = 5 * time.Second
	DBPoolMetricsInterval       = 30 * time.Second
	DBPoolWatchInterval         = 15 * time.Second
	DBPoolWatchFailures         = 3
	DBQueryTimeout              = 30 * time.Second
	DBManagedQueryTimeout       = 10 * time.Second
	DBManagedStatementTimeout   = 10 * time.Second
	DBManagedHostMarker         = "neon.tech"

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort          = "5000"
	DefaultClientURL         = "http://localhost:3000"
	DefaultJWTSecret         = "your-secret-key"
	DefaultJWTExpiresIn      = "7d"
	DefaultRateLimitWindow   = 15 * time.Minute
	DefaultRateLimitMax      = 100
	DefaultLogDir            = "logs"
	DefaultLogLevel          = "info"
	RateLimitCleanupInterval = 1 * time.Minute

	LoggerMaxSize          = 20
	LoggerMaxBackups       = 0
	LoggerAppMaxAgeDays    = 14
	LoggerErrorMaxAgeDays  = 30
	CORSMaxAgeSeconds      = 300
	MigrationPreviewLength = 50

	CompressionMinSize = 1024

	APIPrefix        = "/api"
	HealthPath       = "/health"
	MetricsPath      = "/metrics"
	TraceIDHeader    = "X-Trace-ID"
	StackPlaceholder = "🥞"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
