package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/AlibekovAA/user-service/internal/common/clock"
	"github.com/AlibekovAA/user-service/internal/common/config"
	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/db"
	commonhttp "github.com/AlibekovAA/user-service/internal/common/http"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	userhttp "github.com/AlibekovAA/user-service/internal/user/http"
	userrepo "github.com/AlibekovAA/user-service/internal/user/repository"
	userservice "github.com/AlibekovAA/user-service/internal/user/service"
)

const ServiceName = "user-service"

type App struct {
	Config      config.AppConfig
	Log         *logger.Logger
	Pool        *db.Pool
	Users       *userservice.UserService
	Errors      *commonhttp.ErrorHandler
	RateLimiter *commonhttp.RateLimiter

	closeOnce sync.Once
}

// Init loads .env and configuration and builds the logger. Configuration
// errors are returned before any log file is opened.
func Init() (config.AppConfig, *logger.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := NewLogger(cfg)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}

func NewLogger(cfg config.AppConfig) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Dir:     cfg.LogDir,
		Service: ServiceName,
		Level:   cfg.LogLevel,
		JSON:    cfg.IsProduction(),
	})
}

// NewApp connects the pool and wires the user stack. The caller owns Close.
func NewApp(ctx context.Context, cfg config.AppConfig, log *logger.Logger) (*App, error) {
	pool, err := db.NewPool(ctx, log, db.BuildConfig(cfg))
	if err != nil {
		return nil, err
	}

	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)

	users := userservice.NewUserService(userrepo.NewPgRepository(pool), log)

	return &App{
		Config:      cfg,
		Log:         log,
		Pool:        pool,
		Users:       users,
		Errors:      commonhttp.NewErrorHandler(log, cfg.IsProduction()),
		RateLimiter: commonhttp.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax, clock.NewRealClock()),
	}, nil
}

func (a *App) Handler() (http.Handler, error) {
	router := commonhttp.NewRouter(a.Errors)
	userhttp.NewHandler(a.Users, a.Errors, a.Log).Mount(router)

	return commonhttp.BuildPipeline(commonhttp.PipelineDeps{
		Service:      ServiceName,
		Config:       a.Config,
		Log:          a.Log,
		ErrorHandler: a.Errors,
		RateLimiter:  a.RateLimiter,
	}, router)
}

// WatchPool runs the background pool check until ctx is done. onFatal is
// called once the pool is considered unusable.
func (a *App) WatchPool(ctx context.Context, onFatal func(error)) {
	go db.Watch(ctx, a.Pool, db.WatchConfig{
		Interval:    constants.DBPoolWatchInterval,
		MaxFailures: constants.DBPoolWatchFailures,
	}, a.Log, onFatal)
}

// Close stops the rate limiter and closes the pool. It is safe to call more
// than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.RateLimiter.Stop()
		a.Pool.Close()
		a.Log.Info("database pool closed")
	})
}
