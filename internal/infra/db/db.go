// Package db is the persistence collaborator for Habit King: sqlx over the
// embedded SQLite driver or PostgreSQL (pgx), with goose migrations.
// Dates are stored as TEXT YYYY-MM-DD and instants as unix seconds so the
// same SQL runs on both drivers.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/habit-king/habitking/internal/domain"
	"github.com/habit-king/habitking/internal/logger"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DB implements domain.Store.
type DB struct {
	db     *sqlx.DB
	driver string
}

var _ domain.Store = (*DB)(nil)

// Open connects, configures the pool and runs migrations.
// For SQLite, dsn is a file path; the parent directory is created.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1) // SQLite is single-writer
		conn.SetMaxIdleConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(conn.DB, driver); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", driver)
	return &DB{db: conn, driver: driver}, nil
}

// sqliteDSN enables WAL, a busy timeout and foreign keys.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Driver returns the database/sql driver name.
func (d *DB) Driver() string { return d.driver }

// readOpts are the options for consistent multi-statement reads.
// SQLite transactions are already serializable.
func (d *DB) readOpts() *sql.TxOptions {
	if d.driver == DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success.
func (d *DB) inTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// inserted reports whether an insert-if-absent wrote a row.
func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// affectedOrNotFound returns sentinel when an update touched no row.
func affectedOrNotFound(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

// ─── Time & Date Columns ────────────────────────────────────────────────────

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// parseDate tolerates empty columns.
func parseDate(s string) domain.Date {
	if s == "" {
		return domain.Date{}
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		logger.Warn("bad date column", "value", s)
		return domain.Date{}
	}
	return d
}

func parseMonth(s string) domain.Month {
	m, err := domain.ParseMonth(s)
	if err != nil {
		logger.Warn("bad month column", "value", s)
		return domain.Month{}
	}
	return m
}
