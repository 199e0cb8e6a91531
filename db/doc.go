// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the SQL connection and schema for the remote document store.

# Opening a Connection

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:support.db")

PostgreSQL uses github.com/lib/pq; SQLite uses the pure-Go modernc.org/sqlite
driver, so no cgo toolchain is needed.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv_store: one row per collection document (doc_key, doc, updated_at)

Documents are stored as JSON text exactly as the server produced them, so a
document read back is byte-identical to the one written.
*/
package db
