// Package store keeps the CLI's local state in SQLite: the session cookie
// jar and a few settings.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ClientIDKey is the settings key of the per-install client id.
const ClientIDKey = "client_id"

// GetSetting returns a setting. ok is false when the key is not set.
func GetSetting(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a setting, replacing any previous value.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// GetClientID returns the stable id of this install, creating it on first
// use. INSERT OR IGNORE followed by a read keeps concurrent first runs from
// ending up with different ids.
func GetClientID(ctx context.Context, db *sql.DB) (string, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		ClientIDKey, uuid.NewString(),
	)
	if err != nil {
		return "", fmt.Errorf("storing client id: %w", err)
	}

	id, _, err := GetSetting(ctx, db, ClientIDKey)
	if err != nil {
		return "", err
	}
	return id, nil
}
