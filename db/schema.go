// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the database and verifies the connection.
// dbType selects the driver: "postgres" (lib/pq) or "sqlite" (modernc).
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}
	if dbType == TypeSQLite {
		// one writer at a time; an in-memory database lives only as long as its connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}
	return conn, nil
}

// CreateSchema creates the key-value table.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The statements below are valid for both PostgreSQL and SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
    doc_key TEXT PRIMARY KEY,
    doc TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// UpsertDocument is the write statement for kv_store
const UpsertDocument = `
INSERT INTO kv_store (doc_key, doc, updated_at)
VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (doc_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
`

// SelectDocument is the read statement for kv_store
const SelectDocument = `SELECT doc FROM kv_store WHERE doc_key = $1`
