package main

import (
	"context"
	"csv-drop/internal/adapters/repository/postgres"
	"csv-drop/internal/config"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		source string
		up     bool
		down   bool
	)

	flag.StringVar(&source, "source", "db/migrations", "Path to migrations directory")
	flag.BoolVar(&up, "up", false, "Run up migrations")
	flag.BoolVar(&down, "down", false, "Run down migrations")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if up == down {
		logger.Error("exactly one of -up or -down is required")
		os.Exit(2)
	}

	// Database settings come from the same DB_* variables as the api
	var dbCfg config.DatabaseConfig
	if err := config.LoadDatabase(&dbCfg); err != nil {
		logger.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(context.Background(), dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		logger.Error("failed to create database driver", "error", err)
		os.Exit(1)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", source), "postgres", driver)
	if err != nil {
		logger.Error("failed to create migrate instance", "error", err)
		os.Exit(1)
	}

	direction, run := "up", m.Up
	if down {
		direction, run = "down", m.Down
	}

	logger.Info("running migrations", "direction", direction, "source", source)
	if err := run(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to apply", "direction", direction)
			return
		}
		logger.Error("failed to run migrations", "direction", direction, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations completed successfully", "direction", direction)
}
