package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/user-service/internal/common/bootstrap"
	"github.com/AlibekovAA/user-service/internal/common/db"
	"github.com/AlibekovAA/user-service/migrations"
)

func main() {
	cfg, log, err := bootstrap.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	script := migrations.InitialSchema
	source := "001_initial_schema.sql"
	if cfg.MigrationsFile != "" {
		b, err := os.ReadFile(cfg.MigrationsFile)
		if err != nil {
			log.Fatalf("failed to read migration file: %v", err)
		}
		script = string(b)
		source = cfg.MigrationsFile
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, log, db.BuildConfig(cfg))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Infof("starting database migration from %s", source)
	if _, err := db.RunMigration(ctx, pool, log, script); err != nil {
		pool.Close()
		log.Fatalf("migration failed: %v", err)
	}

	pool.Close()
	_ = log.Close()
}
