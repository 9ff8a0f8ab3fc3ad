//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// initDB opens the corpus database with the pure-Go sqlite driver. Building
// with -tags cgo_sqlite swaps in mattn/go-sqlite3 instead.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
