//go:build !purego

package migrations

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
)

const (
	databaseName  = "sqlite3"
	sqlDriverName = "sqlite3" // registered by mattn/go-sqlite3
)

func newDatabaseDriver(db *sql.DB) (database.Driver, error) {
	return sqlite3.WithInstance(db, &sqlite3.Config{})
}
