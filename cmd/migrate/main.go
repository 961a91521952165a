package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/workledger/backend/internal/infrastructure/config"
	"github.com/workledger/backend/internal/infrastructure/logger"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Store, gormLog)
	if err != nil {
		log.Fatal("Failed to open store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	schema := persistence.NewSchemaManager(db, log)
	ctx := context.Background()

	switch command {
	case "up":
		if err := schema.Initialize(ctx); err != nil {
			log.Fatal("Schema initialization failed", zap.Error(err))
		}
		log.Info("Schema is up to date", zap.String("store", cfg.Store.Path))
	case "reset":
		if err := schema.Reset(ctx); err != nil {
			log.Fatal("Schema reset failed", zap.Error(err))
		}
		log.Info("Schema reset complete", zap.String("store", cfg.Store.Path))
	case "ping":
		if err := db.Ping(); err != nil {
			log.Fatal("Store unreachable", zap.Error(err))
		}
		log.Info("Store reachable", zap.String("store", cfg.Store.Path))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up      Create all tables and indexes (idempotent)")
	fmt.Println("  reset   Drop every table and rebuild the schema")
	fmt.Println("  ping    Check that the store is reachable")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -log-level string   Log level (default \"info\")")
	fmt.Println()
	fmt.Println("The store path comes from config.toml or the LEDGER_STORE_PATH environment variable.")
}
