//go:build purego

package database

import (
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const driverName = "sqlite"

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
