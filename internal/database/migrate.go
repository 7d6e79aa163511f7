package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a goose provider over the embedded migrations for the
// dialect db is bound to
func NewMigrator(db *bun.DB) (*goose.Provider, error) {
	gooseDialect := goose.DialectPostgres
	if db.Dialect().Name() == dialect.SQLite {
		gooseDialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(gooseDialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return provider, nil
}

// Migrate applies every pending migration
func Migrate(ctx context.Context, db *bun.DB) error {
	provider, err := NewMigrator(db)
	if err != nil {
		return err
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
