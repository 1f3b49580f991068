package database

import (
	"fmt"

	"practice-engine/internal/config"
	"practice-engine/internal/logger"

	_ "github.com/godror/godror" // "godror" driver (OCI)
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // "oracle" driver (pure Go)
	"go.uber.org/zap"
)

// SupportedDrivers lists the database/sql driver names accepted in db.driver.
var SupportedDrivers = map[string]bool{
	"oracle": true,
	"godror": true,
}

// NewSQLXDB connects with the configured driver and pings the server.
func NewSQLXDB(cfg *config.Config) (*sqlx.DB, error) {
	driver := cfg.DB.Driver
	if driver == "" {
		driver = "oracle"
	}
	if !SupportedDrivers[driver] {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database with %s: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	logger.Get().Info("Database: connected", zap.String("driver", driver), zap.String("host", cfg.DB.Host))
	return db, nil
}
