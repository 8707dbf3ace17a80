package migrations_test

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/revisit-app/decks-service/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// One connection, otherwise each pooled connection gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO decks (id, author_id, title, date_created, date_updated) VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		"deck-1", 42, "Spanish verbs",
	)
	if err != nil {
		t.Fatalf("insert into decks: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO saved_decks (user_id) VALUES (?)", 7); err != nil {
		t.Fatalf("insert into saved_decks: %v", err)
	}

	var deckIDs string
	if err := db.QueryRowContext(ctx, "SELECT deck_ids FROM saved_decks WHERE user_id = 7").Scan(&deckIDs); err != nil {
		t.Fatalf("select saved_decks: %v", err)
	}
	if deckIDs != "[]" {
		t.Fatalf("expected default deck_ids [], got %s", deckIDs)
	}
}

func TestRunIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("count schema_version: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 migration records, got %d", count)
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

func TestApply_FailedMigrationRollsBack(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_first.sql":  {Data: []byte("CREATE TABLE first (id INTEGER PRIMARY KEY);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE second (id INTEGER PRIMARY KEY); INSERT INTO missing VALUES (1);")},
		"003_third.sql":  {Data: []byte("CREATE TABLE third (id INTEGER PRIMARY KEY);")},
	}

	applied, err := migrations.Apply(ctx, db, fsys)
	if err == nil {
		t.Fatal("expected the broken migration to fail")
	}
	if !strings.Contains(err.Error(), "002") {
		t.Fatalf("expected error to name version 002, got %v", err)
	}
	if !slices.Equal(applied, []int{1}) {
		t.Fatalf("expected only version 1 applied, got %v", applied)
	}

	if !tableExists(t, db, "first") {
		t.Fatal("version 1 should be committed")
	}
	if tableExists(t, db, "second") {
		t.Fatal("version 2 should be rolled back")
	}
	if tableExists(t, db, "third") {
		t.Fatal("version 3 must not run after a failure")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("count schema_version: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded version, got %d", count)
	}

	// Fixing the file lets the next run pick up where it stopped.
	fsys["002_broken.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE second (id INTEGER PRIMARY KEY);")}
	applied, err = migrations.Apply(ctx, db, fsys)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !slices.Equal(applied, []int{2, 3}) {
		t.Fatalf("expected versions 2 and 3 applied, got %v", applied)
	}
}

func TestApply_UnknownRecordedVersion(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	newer := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
	}
	if _, err := migrations.Apply(ctx, db, newer); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	older := fstest.MapFS{"001_a.sql": newer["001_a.sql"]}
	if _, err := migrations.Apply(ctx, db, older); err == nil {
		t.Fatal("expected an error for a database ahead of the migration files")
	}
}

func TestLoad(t *testing.T) {
	ms, err := migrations.Load(migrations.FS)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ms) != 2 || ms[0].Version != 1 || ms[1].Version != 2 {
		t.Fatalf("unexpected embedded migrations: %+v", ms)
	}
	if ms[0].Name != "create_decks" {
		t.Fatalf("expected name create_decks, got %s", ms[0].Name)
	}

	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no version", fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}},
		{"zero version", fstest.MapFS{"000_init.sql": {Data: []byte("SELECT 1;")}}},
		{"duplicate version", fstest.MapFS{
			"001_a.sql":  {Data: []byte("SELECT 1;")},
			"0001_b.sql": {Data: []byte("SELECT 1;")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := migrations.Load(tt.fsys); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
