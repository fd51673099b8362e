package db

import (
	"database/sql"
	"fmt"
)

// schema is the base schema. Session cookies are kept so a login survives
// between CLI runs; settings hold small per-install values.
const schema = `
CREATE TABLE IF NOT EXISTS cookies (
    host       TEXT NOT NULL,
    name       TEXT NOT NULL,
    path       TEXT NOT NULL DEFAULT '/',
    value      TEXT NOT NULL,
    expires_at DATETIME,
    PRIMARY KEY (host, name, path)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
