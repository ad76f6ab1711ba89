// Package cachedb is a small SQLite store for upstream API responses. Bodies
// are stored snappy-compressed and read back only while younger than a
// caller-supplied age.
package cachedb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang/snappy"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/logging"
)

//go:embed schema.sql
var ddl string

// ErrFileDBInTest is returned when a test configuration points at a file.
var ErrFileDBInTest = errors.New("cache database must be in memory in the test environment")

// Client is the cache handle shared by the upstream clients
type Client struct {
	config Config
	DB     *sql.DB
	logger *slog.Logger
}

// Stats summarises the cache contents
type Stats struct {
	Entries     int64 `json:"entries"`
	StoredBytes int64 `json:"storedBytes"`
	RawBytes    int64 `json:"rawBytes"`
}

// NewClient opens the database and applies the schema
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		config: config,
		DB:     db,
		logger: slog.Default().With(slog.String("component", "cachedb")),
	}
	if config.Verbose {
		logging.LogOperation(client.logger, "cache_database_ready", slog.String("path", config.DBPath))
	}
	return client, nil
}

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("%w: %s", ErrFileDBInTest, config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening cache database: %w", err)
	}

	// An in-memory database exists per connection, so it must stay on one.
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := performDatabaseMigration(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmed); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmed, err)
		}
	}
	return nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// Put stores body under key, replacing any previous entry
func (c *Client) Put(ctx context.Context, key string, body []byte, fetchedAt time.Time) error {
	compressed := snappy.Encode(nil, body)

	_, err := c.DB.ExecContext(ctx, `
		INSERT INTO payloads (cache_key, body, raw_size, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			body = excluded.body,
			raw_size = excluded.raw_size,
			fetched_at = excluded.fetched_at`,
		key, compressed, len(body), fetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storing cache entry %s: %w", key, err)
	}
	return nil
}

// Get returns the body stored under key if it was fetched within maxAge.
// A missing or stale entry reports ok=false without an error.
func (c *Client) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool, error) {
	var compressed []byte
	var fetchedAt int64

	err := c.DB.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM payloads WHERE cache_key = ?`, key,
	).Scan(&compressed, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	if time.Since(time.UnixMilli(fetchedAt)) > maxAge {
		return nil, false, nil
	}

	body, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cache entry %s: %w", key, err)
	}
	return body, true, nil
}

// Purge deletes entries fetched before olderThan and returns how many were removed
func (c *Client) Purge(ctx context.Context, olderThan time.Time) (removed int64, err error) {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "purge_cache")

	res, err := tx.ExecContext(ctx, `DELETE FROM payloads WHERE fetched_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}

// Stats reports the number of entries and their compressed and raw sizes
func (c *Client) Stats(ctx context.Context) (stats Stats, err error) {
	rows, err := c.DB.QueryContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(body)), 0), COALESCE(SUM(raw_size), 0) FROM payloads`)
	if err != nil {
		return Stats{}, err
	}
	defer logging.HandleDeferredError(&err, rows.Close, c.logger, "close_stats_rows")

	if rows.Next() {
		if err := rows.Scan(&stats.Entries, &stats.StoredBytes, &stats.RawBytes); err != nil {
			return Stats{}, err
		}
	}
	return stats, rows.Err()
}
