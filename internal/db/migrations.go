package db

import (
	"database/sql"
	"fmt"
)

// migrations run in order after the base schema. The index of the last
// applied migration is kept in PRAGMA user_version. Append new ones at the
// end.
var migrations = []string{
	// 1: secure cookies must only be replayed over https.
	`ALTER TABLE cookies ADD COLUMN secure INTEGER NOT NULL DEFAULT 0`,
	// 2: expired cookies are pruned on open.
	`CREATE INDEX IF NOT EXISTS idx_cookies_expires_at ON cookies(expires_at)`,
}

// Migrate creates the schema and applies pending migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}
