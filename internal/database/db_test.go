package database_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/homophones/assets"
	"github.com/robalobadob/homophones/internal/database"
)

func TestMigrateBundledSchema(t *testing.T) {
	fsys, err := assets.Migrations()
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "data", "app.db"), fsys)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, table := range []string{"users", "kv", "game_results"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	// Re-running is a no-op.
	if err := database.Migrate(db, fsys); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("recorded migrations = %d, want 1", n)
	}
}

func TestMigrateOrderAndFailure(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fsys := fstest.MapFS{
		"002_seed.sql":   {Data: []byte(`INSERT INTO things (name) VALUES ('a');`)},
		"001_things.sql": {Data: []byte(`CREATE TABLE things (name TEXT);`)},
		"README.md":      {Data: []byte(`ignored`)},
	}
	if err := database.Migrate(db, fsys); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM things`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("things = %d, err = %v", n, err)
	}

	bad := fstest.MapFS{"003_bad.sql": {Data: []byte(`CREATE TABL nope;`)}}
	if err := database.Migrate(db, bad); err == nil {
		t.Fatal("expected error for invalid SQL")
	}
	var recorded int
	_ = db.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE name='003_bad.sql'`).Scan(&recorded)
	if recorded != 0 {
		t.Fatal("failed migration was recorded")
	}
}
