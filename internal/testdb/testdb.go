// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/brewhouse/database/migrations"
	"github.com/shashiranjanraj/brewhouse/pkg/database"
	"github.com/shashiranjanraj/brewhouse/pkg/migration"
)

// New returns a fresh database with every registered migration applied.
// Each call gets its own private in-memory database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenDialector(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to ":memory:" would otherwise be a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.New(db).WithOutput(io.Discard).Run())
	return db
}
