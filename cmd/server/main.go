package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlibekovAA/user-service/internal/common/bootstrap"
	srv "github.com/AlibekovAA/user-service/internal/common/server"
)

func main() {
	cfg, log, err := bootstrap.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("starting %s in %s mode", bootstrap.ServiceName, cfg.Env)

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	app.WatchPool(ctx, func(err error) {
		log.Criticalf("unexpected error on idle database client: %v", err)
		app.Pool.Close()
		log.Fatal("terminating: database pool is unusable")
	})

	handler, err := app.Handler()
	if err != nil {
		app.Close()
		log.Fatalf("failed to build request pipeline: %v", err)
	}

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, handler)

	hooks := []srv.ShutdownHook{func(context.Context) error {
		app.Close()
		return nil
	}}

	if err := srv.Run(ctx, serverConfig, server, log, bootstrap.ServiceName, hooks); err != nil {
		app.Close()
		log.Fatalf("server error: %v", err)
	}
	_ = log.Close()
}
