package db

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/user-service/internal/common/config"
	"github.com/AlibekovAA/user-service/internal/common/constants"
)

type TLSMode string

const (
	TLSDisable TLSMode = "disable"
	// TLSRequire encrypts the connection without verifying the server
	// certificate; managed providers on free tiers do not ship a usable CA.
	TLSRequire TLSMode = "require"
)

type PoolConfig struct {
	DatabaseURL       string
	ApplicationName   string
	MaxConns          int32
	MinConns          int32
	MaxConnIdleTime   time.Duration
	ConnectTimeout    time.Duration
	MaxConnUses       int64
	KeepAlive         time.Duration
	HealthCheckPeriod time.Duration
	TLSMode           TLSMode
	StatementTimeout  time.Duration
	QueryTimeout      time.Duration
	Managed           bool
	LogConnections    bool
}

func BuildConfig(cfg config.AppConfig) PoolConfig {
	managed := IsManagedHost(cfg.DatabaseURL)

	pc := PoolConfig{
		DatabaseURL:       cfg.DatabaseURL,
		ApplicationName:   cfg.Env + "-app",
		MaxConns:          cfg.DBPoolMaxConns,
		MinConns:          cfg.DBPoolMinConns,
		MaxConnIdleTime:   constants.DBPoolConnMaxIdleTime,
		ConnectTimeout:    constants.DBPoolConnectTimeout,
		MaxConnUses:       constants.DBPoolMaxConnUses,
		KeepAlive:         constants.DBPoolKeepAlive,
		HealthCheckPeriod: constants.DBPoolHealthCheck,
		TLSMode:           TLSDisable,
		QueryTimeout:      constants.DBQueryTimeout,
		Managed:           managed,
		LogConnections:    !cfg.IsTest(),
	}

	if cfg.IsProduction() || managed {
		pc.TLSMode = TLSRequire
	}

	if managed {
		pc.StatementTimeout = constants.DBManagedStatementTimeout
		pc.QueryTimeout = constants.DBManagedQueryTimeout
		pc.ConnectTimeout = constants.DBPoolManagedConnectTimeout
	}

	return pc
}

// IsManagedHost reports whether the database URL points at managed
// serverless hosting, which needs TLS and tighter statement timeouts.
func IsManagedHost(databaseURL string) bool {
	if u, err := url.Parse(databaseURL); err == nil && u.Host != "" {
		return strings.Contains(strings.ToLower(u.Hostname()), constants.DBManagedHostMarker)
	}
	return strings.Contains(strings.ToLower(databaseURL), constants.DBManagedHostMarker)
}

func (c PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	if c.MaxConns > 0 {
		cfg.MaxConns = c.MaxConns
	}
	if c.MinConns >= 0 {
		cfg.MinConns = c.MinConns
	}
	if c.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = c.MaxConnIdleTime
	}
	if c.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = c.HealthCheckPeriod
	}
	if c.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}

	if c.KeepAlive > 0 {
		dialer := &net.Dialer{KeepAlive: c.KeepAlive, Timeout: cfg.ConnConfig.ConnectTimeout}
		cfg.ConnConfig.DialFunc = dialer.DialContext
	}

	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if c.ApplicationName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = c.ApplicationName
	}
	if c.StatementTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10)
	}

	switch c.TLSMode {
	case TLSRequire:
		cfg.ConnConfig.TLSConfig = &tls.Config{
			ServerName:         cfg.ConnConfig.Host,
			InsecureSkipVerify: true,
		}
	default:
		cfg.ConnConfig.TLSConfig = nil
	}
	cfg.ConnConfig.Fallbacks = nil

	return cfg, nil
}
