package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	for range 2 {
		db, err := OpenAndMigrate(path)
		if err != nil {
			t.Fatalf("OpenAndMigrate: %v", err)
		}
		var version int
		if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
			t.Fatal(err)
		}
		if version != len(migrations) {
			t.Errorf("user_version = %d, want %d", version, len(migrations))
		}
		db.Close()
	}
}

func TestSchemaHasCookieColumns(t *testing.T) {
	db := NewTestDB(t)
	_, err := db.Exec(`INSERT INTO cookies (host, name, path, value, expires_at, secure) VALUES ('h', 'n', '/', 'v', NULL, 1)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}
