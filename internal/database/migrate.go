package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies every pending *.up.sql file from dir, in lexical order,
// recording applied versions in schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir string, log *slog.Logger) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var upMigrations []string

	for _, file := range files {
		name := file.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upMigrations = append(upMigrations, name)
		}
	}

	sort.Strings(upMigrations)

	log.Info("found migrations", "count", len(upMigrations))

	query := "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)"

	for _, migration := range upMigrations {
		var exists bool

		err := pool.QueryRow(ctx, query, migration).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration, err)
		}

		if exists {
			log.Debug("migration already applied", "version", migration)
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join(dir, migration))
		if err != nil {
			return fmt.Errorf("failed to read sql file %s: %w", migration, err)
		}

		_, err = pool.Exec(ctx, string(sqlBytes))
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration, err)
		}

		_, err = pool.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", migration)
		if err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration, err)
		}

		log.Info("applied migration", "version", migration)
	}

	return nil
}
