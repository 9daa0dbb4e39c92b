package db

import (
	"context"
	"fmt"
	"time"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	"github.com/AlibekovAA/user-service/internal/observability/metrics"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type WatchConfig struct {
	Interval    time.Duration
	MaxFailures int
}

// Watch pings the pool outside any request and calls onFatal once
// MaxFailures consecutive pings have failed. It returns when ctx is done or
// after onFatal has been called.
func Watch(ctx context.Context, pool Pinger, cfg WatchConfig, log *logger.Logger, onFatal func(error)) {
	if cfg.Interval <= 0 {
		cfg.Interval = constants.DBPoolWatchInterval
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = constants.DBPoolWatchFailures
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := pool.Ping(ctx)
		if err == nil {
			if failures > 0 {
				log.Infof("database pool recovered after %d failed pings", failures)
			}
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return
		}

		failures++
		metrics.DBPoolPingFailures.Inc()
		log.Warnf("database pool ping failed (%d/%d): %v", failures, cfg.MaxFailures, err)

		if failures >= cfg.MaxFailures {
			onFatal(fmt.Errorf("database pool unusable after %d failed pings: %w", failures, err))
			return
		}
	}
}
