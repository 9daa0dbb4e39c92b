package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/user-service/internal/common/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Output: io.Discard})
	require.NoError(t, err)
	return log
}

func TestRun_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := DefaultServerConfig("0")
	cfg.Addr = ln.Addr().String()
	srv := NewServer(cfg, http.NotFoundHandler())

	err = Run(context.Background(), cfg, srv, testLogger(t), "users", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is already in use")
}

func TestRun_GracefulShutdownRunsHooks(t *testing.T) {
	cfg := DefaultServerConfig("0")
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	cfg.DrainTimeout = 100 * time.Millisecond
	srv := NewServer(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	hookCalled := make(chan struct{}, 1)
	hooks := []ShutdownHook{func(ctx context.Context) error {
		hookCalled <- struct{}{}
		return nil
	}}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, srv, testLogger(t), "users", hooks) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Len(t, hookCalled, 1)
}

func TestRun_HooksRunAfterInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	cfg := DefaultServerConfig("0")
	cfg.Addr = addr
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.DrainTimeout = 100 * time.Millisecond
	srv := NewServer(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		finished.Store(true)
		w.WriteHeader(http.StatusOK)
	}))

	var finishedAtHook atomic.Bool
	hooks := []ShutdownHook{func(ctx context.Context) error {
		finishedAtHook.Store(finished.Load())
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, srv, testLogger(t), "users", hooks) }()

	go func() {
		for i := 0; i < 100; i++ {
			resp, err := http.Get("http://" + addr + "/")
			if err == nil {
				resp.Body.Close()
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}

	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, finishedAtHook.Load(), "hook ran before the in-flight request completed")
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig("5000")
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}
