// Package databasetest provides a migrated in-memory SQLite database for tests.
package databasetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/redmonkez12/go-accounts-api/internal/database"
)

// NewSQLite opens a private in-memory database with all migrations applied.
// The database is closed when the test finishes.
func NewSQLite(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := database.NewSQLiteDB(sqlDB)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
