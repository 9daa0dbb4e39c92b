package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/logger"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	DrainTimeout      time.Duration
}

func DefaultServerConfig(port string) ServerConfig {
	return ServerConfig{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
		ShutdownTimeout:   constants.ShutdownTimeout,
		DrainTimeout:      constants.DrainTimeout,
	}
}

func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

type ShutdownHook func(ctx context.Context) error

// Run serves until ctx is cancelled, then drains: keep-alives are disabled
// and in-flight requests get until the shutdown timeout. Hooks run once the
// server has stopped, each bounded by the drain timeout. A listen failure
// is returned with a readable description.
func Run(ctx context.Context, cfg ServerConfig, server *http.Server, log *logger.Logger, serviceName string, hooks []ShutdownHook) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return describeListenError(server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("%s listening on %s", serviceName, ln.Addr())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("%s stopped unexpectedly: %w", serviceName, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down %s...", serviceName)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	server.SetKeepAlivesEnabled(false)

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		log.Errorf("%s forced to shutdown: %v", serviceName, shutdownErr)
	}

	runHooks(cfg.DrainTimeout, log, serviceName, hooks)

	if shutdownErr != nil {
		return shutdownErr
	}

	log.Infof("%s stopped gracefully", serviceName)
	return nil
}

func runHooks(timeout time.Duration, log *logger.Logger, serviceName string, hooks []ShutdownHook) {
	for i, hook := range hooks {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := hook(ctx); err != nil {
			log.Errorf("%s: shutdown hook %d failed: %v", serviceName, i, err)
		}
		cancel()
	}
}

func describeListenError(addr string, err error) error {
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("%s is already in use: %w", addr, err)
	case errors.Is(err, syscall.EACCES):
		return fmt.Errorf("%s requires elevated privileges: %w", addr, err)
	default:
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
}
