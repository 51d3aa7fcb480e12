package database

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
)

const createVersionsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migration is one SQL file, versioned by its base name.
type Migration struct {
	Version string
	SQL     string
}

// LoadMigrations reads every *.sql file in dir, ordered by name.
func LoadMigrations(fs afero.Fs, dir string) ([]Migration, error) {
	files, err := afero.Glob(fs, filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	out := make([]Migration, 0, len(files))
	for _, f := range files {
		body, err := afero.ReadFile(fs, f)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", filepath.Base(f), err)
		}
		if strings.TrimSpace(string(body)) == "" {
			continue
		}
		out = append(out, Migration{Version: filepath.Base(f), SQL: string(body)})
	}
	return out, nil
}

// Pending filters out migrations whose version is already applied.
func Pending(all []Migration, applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// Migrate applies every pending migration in dir, one transaction each.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fs afero.Fs, dir string) error {
	if _, err := pool.Exec(ctx, createVersionsTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	all, err := LoadMigrations(fs, dir)
	if err != nil {
		return err
	}

	rows, err := pool.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	for _, m := range Pending(all, applied) {
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		slog.Info("applied migration", "version", m.Version)
	}
	return nil
}
