//go:build !purego

package database

import (
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const driverName = "sqlite3"

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}
