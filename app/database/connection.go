package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

const (
	openAttempts = 5
	busyTimeout  = 5 * time.Second
)

// NewConnection opens the SQLite database at path. A cron invocation and a
// manual invocation may race on the same file, so the open is wrapped in a
// bounded retry loop that treats a busy/locked database as transient.
func NewConnection(path string) (*DB, error) {
	var lastErr error

	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= openAttempts; attempt++ {
		db, err := open(path)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if !isBusy(err) {
			return nil, err
		}

		if attempt < openAttempts {
			slog.Warn("Database busy, retrying", "attempt", attempt, "max_attempts", openAttempts, "delay", backoff.String())
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("failed to open database after %d attempts: %w", openAttempts, lastErr)
}

func open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
