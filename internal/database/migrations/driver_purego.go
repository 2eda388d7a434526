//go:build purego

package migrations

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
)

const (
	databaseName  = "sqlite"
	sqlDriverName = "sqlite" // registered by modernc.org/sqlite
)

func newDatabaseDriver(db *sql.DB) (database.Driver, error) {
	return sqlite.WithInstance(db, &sqlite.Config{})
}
