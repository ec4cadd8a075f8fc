package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config for the Postgres pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB wraps database/sql with the bind style of the underlying driver, so the
// same repositories run against Postgres (pgx) and SQLite (modernc).
type DB struct {
	*sql.DB
	postgres bool
}

// Rebind converts ?-style placeholders to $n for Postgres.
func (d *DB) Rebind(query string) string {
	if !d.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OpenPostgres creates a pgx pool and wraps it as *sql.DB.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, *pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "receipts-extractor"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{DB: db, postgres: true}, pool, nil
}

// OpenSQLite opens a local or in-memory SQLite database.
// Use "file::memory:?cache=shared" for in-memory.
func OpenSQLite(dsn string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "dsn", dsn, "error", err)
		return nil, err
	}
	// modernc sqlite misbehaves with concurrent writers on one connection pool
	db.SetMaxOpenConns(1)
	return &DB{DB: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS receipt_files (
	id           TEXT PRIMARY KEY,
	source_path  TEXT NOT NULL,
	filename     TEXT NOT NULL,
	file_ext     TEXT NOT NULL,
	file_size    INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	status       TEXT NOT NULL,
	uploaded_at  TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS receipt_files_content_hash ON receipt_files (content_hash);

CREATE TABLE IF NOT EXISTS extractions (
	id             TEXT PRIMARY KEY,
	file_id        TEXT NOT NULL REFERENCES receipt_files (id),
	method         TEXT NOT NULL,
	merchant_name  TEXT,
	total_amount   TEXT,
	tax_amount     TEXT,
	subtotal       TEXT,
	purchased_at   TEXT,
	payment_method TEXT,
	source_origin  TEXT NOT NULL,
	source_text    TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS extractions_file_id ON extractions (file_id);
`

// EnsureSchema creates the tables if they do not exist. The DDL is kept to
// the TEXT/INTEGER subset both dialects accept; statements run one at a time
// because pgx's extended protocol rejects multi-statement strings.
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range strings.Split(schemaDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
