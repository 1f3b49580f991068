package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"practice-engine/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

const createVersionTable = `CREATE TABLE SCHEMA_MIGRATIONS (
    VERSION    VARCHAR2(255) PRIMARY KEY,
    APPLIED_AT TIMESTAMP DEFAULT SYSTIMESTAMP NOT NULL
)`

// RunMigrations applies every embedded *.up.sql file that is not yet recorded
// in SCHEMA_MIGRATIONS, in file name order. It returns the applied versions.
func RunMigrations(ctx context.Context, db *sqlx.DB) ([]string, error) {
	return runMigrations(ctx, db, migrationFiles)
}

func runMigrations(ctx context.Context, db *sqlx.DB, fsys fs.FS) ([]string, error) {
	log := logger.Get()

	if err := ensureVersionTable(ctx, db); err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("could not list migrations: %w", err)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		version := strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], ".up.sql")

		var count int
		if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM SCHEMA_MIGRATIONS WHERE VERSION = :1`, version); err != nil {
			return applied, fmt.Errorf("could not check migration %s: %w", version, err)
		}
		if count > 0 {
			log.Debug("Migrate: already applied", zap.String("version", version))
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return applied, fmt.Errorf("could not execute migration %s: %w", version, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO SCHEMA_MIGRATIONS (VERSION) VALUES (:1)`, version); err != nil {
			return applied, fmt.Errorf("could not record migration %s: %w", version, err)
		}

		log.Info("Migrate: applied", zap.String("version", version))
		applied = append(applied, version)
	}

	log.Info("Migrate: completed", zap.Int("applied", len(applied)))
	return applied, nil
}

func ensureVersionTable(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM USER_TABLES WHERE TABLE_NAME = 'SCHEMA_MIGRATIONS'`); err != nil {
		return fmt.Errorf("could not inspect schema: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("could not create SCHEMA_MIGRATIONS: %w", err)
	}
	return nil
}

// splitStatements breaks a script on terminating semicolons. Oracle drivers
// execute one statement per call and reject the trailing semicolon.
func splitStatements(script string) []string {
	var (
		stmts   []string
		current strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
			stmts = append(stmts, stmt)
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
