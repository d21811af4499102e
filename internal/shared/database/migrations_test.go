package database

import (
	"context"
	"slices"
	"testing"
	"testing/fstest"
)

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":              {Data: []byte("SELECT 1;")},
		"001_create_simulation_runs.sql": {Data: []byte("SELECT 1;")},
		"README.md":                      {Data: []byte("notes")},
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}

	want := []string{"001_create_simulation_runs.sql", "002_add_index.sql"}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestNilDBStatus(t *testing.T) {
	var db *DB
	if got := db.Status(context.Background()); got != "disabled" {
		t.Errorf("Status = %q, want disabled", got)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
