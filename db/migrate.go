package db

import (
	"context"
	"fmt"
	"net/http"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/classterra/school-platform-backend/db/migrations"
)

const migrationsTableName = "schema_migrations"

// Migrate applies up to count migrations in the given direction against the database at dbURL.
// A count of 0 applies all pending migrations.
func Migrate(dbURL string, dir migrate.MigrationDirection, count int) (int, error) {
	dbConnectionPool, err := OpenDBConnectionPool(dbURL)
	if err != nil {
		return 0, fmt.Errorf("connecting to the database: %w", err)
	}
	defer dbConnectionPool.Close()

	ms := migrate.MigrationSet{
		TableName: migrationsTableName,
	}

	m := migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrations.FS)}
	sqlDB, err := dbConnectionPool.SqlDB(context.Background())
	if err != nil {
		return 0, fmt.Errorf("fetching sql.DB: %w", err)
	}
	return ms.ExecMax(sqlDB, dbConnectionPool.DriverName(), m, dir, count)
}
