// Package index stores a reference graph snapshot in SQLite, with optional
// FTS5 full-text search over document bodies.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	checksum TEXT NOT NULL DEFAULT '',
	body     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS links (
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	raw      TEXT NOT NULL,
	fragment TEXT NOT NULL DEFAULT '',
	line     INTEGER NOT NULL,
	col      INTEGER NOT NULL,
	dangling INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS findings (
	kind     TEXT NOT NULL,
	document TEXT NOT NULL,
	detail   TEXT NOT NULL DEFAULT '',
	line     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
CREATE INDEX IF NOT EXISTS idx_findings_kind ON findings(kind);
`

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// DB wraps a sql.DB with graph-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// An empty dsn or MemoryDSN keeps everything in memory on one connection.
func Open(dsn string) (*DB, error) {
	memory := dsn == "" || dsn == MemoryDSN
	params := "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if memory {
		dsn = "file::memory:"
		params = "_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	conn, err := sql.Open("sqlite3", dsn+sep+params)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if memory {
		// Every new connection would see its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
