package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/redmonkez12/go-accounts-api/internal/config"
)

// Open connects to the configured database, verifies the connection and
// returns a Bun DB bound to the matching dialect
func Open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	driverName := cfg.Driver
	if driverName == config.DriverSQLite {
		driverName = sqliteshim.ShimName
	}

	sqlDB, err := sql.Open(driverName, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		return NewSQLiteDB(sqlDB), nil
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return NewBunDB(sqlDB), nil
}

// NewBunDB creates a new Bun DB instance from an existing Postgres sql.DB connection
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}

// NewSQLiteDB creates a new Bun DB instance from an existing SQLite sql.DB connection
func NewSQLiteDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, sqlitedialect.New())
}
