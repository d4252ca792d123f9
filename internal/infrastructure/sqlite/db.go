// Package sqlite provides the SQLite-backed change-event archive for
// libwatch. The archive is a derived index over the state file's history,
// used for time-window queries; losing it is never fatal.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/libwatch/internal/infrastructure/migrations"
	"github.com/zjrosen/libwatch/internal/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB manages the archive database connection: lifecycle, pragmas, and
// migrations.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the archive database, configures pragmas, and runs
// migrations. Creates the parent directory if it doesn't exist.
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening archive database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating archive directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging archive database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("running archive migrations: %w", err)
	}

	log.Debug(log.CatDB, "Archive database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// EventArchive returns the change-event archive backed by this connection.
func (db *DB) EventArchive() *EventArchive {
	return newEventArchive(db.conn)
}

// Connection returns the underlying *sql.DB for testing purposes.
func (db *DB) Connection() *sql.DB {
	return db.conn
}
