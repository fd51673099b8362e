package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// Jar is an http.CookieJar that writes cookies through to SQLite so the
// session survives process restarts. Cookie matching is done by
// net/http/cookiejar; the table is only replayed into it on open.
type Jar struct {
	db *sql.DB

	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// OpenJar loads the unexpired cookies from db into a new jar.
func OpenJar(ctx context.Context, db *sql.DB) (*Jar, error) {
	now := time.Now().UTC()
	if _, err := db.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at < ?`, now,
	); err != nil {
		return nil, fmt.Errorf("pruning expired cookies: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT host, name, path, value, expires_at, secure FROM cookies`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}
	defer rows.Close()

	inner, _ := cookiejar.New(nil)
	for rows.Next() {
		var (
			host, name, path, value string
			expires                 sql.NullTime
			secure                  bool
		)
		if err := rows.Scan(&host, &name, &path, &value, &expires, &secure); err != nil {
			return nil, fmt.Errorf("scanning cookie: %w", err)
		}
		scheme := "http"
		if secure {
			scheme = "https"
		}
		c := &http.Cookie{Name: name, Value: value, Path: path, Secure: secure}
		if expires.Valid {
			c.Expires = expires.Time
		}
		inner.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: path}, []*http.Cookie{c})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cookies: %w", err)
	}

	return &Jar{db: db, jar: inner}, nil
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

// SetCookies implements http.CookieJar. Persistence errors are logged; the
// in-memory jar is always updated.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	j.jar.SetCookies(u, cookies)
	j.mu.RUnlock()

	ctx := context.Background()
	now := time.Now()
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now))
		if err := j.persist(ctx, u.Hostname(), path, c, expired, now); err != nil {
			slog.Error("failed to persist cookie", "name", c.Name, "host", u.Hostname(), "error", err)
		}
	}
}

func (j *Jar) persist(ctx context.Context, host, path string, c *http.Cookie, expired bool, now time.Time) error {
	if expired {
		_, err := j.db.ExecContext(ctx,
			`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`,
			host, c.Name, path,
		)
		return err
	}

	var expires any
	switch {
	case c.MaxAge > 0:
		expires = now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
	case !c.Expires.IsZero():
		expires = c.Expires.UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cookies (host, name, path, value, expires_at, secure) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(host, name, path) DO UPDATE SET
		     value = excluded.value, expires_at = excluded.expires_at, secure = excluded.secure`,
		host, c.Name, path, c.Value, expires, c.Secure,
	)
	return err
}

// Clear forgets every cookie, in memory and on disk.
func (j *Jar) Clear() error {
	inner, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = inner
	j.mu.Unlock()

	if _, err := j.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("clearing cookies: %w", err)
	}
	return nil
}
