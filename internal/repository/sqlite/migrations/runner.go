// Package migrations holds the SQLite schema for decks and saved decks.
//
// Files are named NNN_description.sql. The numeric prefix is the schema
// version; versions are applied in ascending order, each in its own
// transaction, and recorded in schema_version.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.sql
var FS embed.FS

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Run brings db up to the embedded schema.
func Run(ctx context.Context, db *sql.DB) error {
	_, err := Apply(ctx, db, FS)
	return err
}

// Apply runs every migration in fsys whose version is not yet recorded and
// returns the versions it applied. It refuses to touch a database that
// records a version fsys does not know.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS) ([]int, error) {
	all, err := Load(fsys)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return nil, fmt.Errorf("create schema_version: %w", err)
	}

	recorded, err := recordedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, v := range recorded {
		if !slices.ContainsFunc(all, func(m Migration) bool { return m.Version == v }) {
			return nil, fmt.Errorf("database has schema version %d which no migration file provides", v)
		}
	}

	var applied []int
	for _, m := range all {
		if slices.Contains(recorded, m.Version) {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return applied, fmt.Errorf("migration %03d %s: %w", m.Version, m.Name, err)
		}
		slog.InfoContext(ctx, "migration applied", "version", m.Version, "name", m.Name)
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// Load reads and orders the migrations in fsys. Files without a numeric
// version prefix and duplicate versions are errors.
func Load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var out []Migration
	for _, file := range names {
		prefix, rest, ok := strings.Cut(strings.TrimSuffix(path.Base(file), ".sql"), "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must look like 001_description.sql", file)
		}
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		out = append(out, Migration{Version: version, Name: rest, SQL: string(body)})
	}

	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

func recordedVersions(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, name) VALUES (?, ?)", m.Version, m.Name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
