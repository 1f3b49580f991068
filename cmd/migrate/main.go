package main

import (
	"context"
	"log"
	"time"

	"practice-engine/internal/config"
	"practice-engine/internal/database"
	"practice-engine/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXDB(cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	applied, err := database.RunMigrations(ctx, db)
	if err != nil {
		l.Fatal("Failed to run migrations", zap.Strings("applied", applied), zap.Error(err))
	}
	if len(applied) == 0 {
		l.Info("Schema is up to date")
		return
	}
	l.Info("Migrations applied", zap.Strings("versions", applied))
}
