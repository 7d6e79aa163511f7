package database_test

import (
	"context"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-accounts-api/internal/database"
	"github.com/redmonkez12/go-accounts-api/internal/database/databasetest"
)

func TestMigrate_AppliesAndRollsBack(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)

	provider, err := database.NewMigrator(db)
	require.NoError(t, err)

	statuses, err := provider.Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.Equal(t, goose.StateApplied, s.State)
	}

	exists, err := db.NewSelect().Model((*database.Account)(nil)).Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = provider.Down(ctx)
	require.NoError(t, err)

	_, err = db.NewSelect().Model((*database.Account)(nil)).Count(ctx)
	assert.Error(t, err, "accounts table should be dropped")
}

func TestMigrate_Idempotent(t *testing.T) {
	db := databasetest.NewSQLite(t)
	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestAccountsTable_RejectsVerifiedWithToken(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)

	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, verified, verify_token) VALUES (?, ?, ?, ?, ?)`,
		"00000000-0000-0000-0000-000000000001", "a@x.com", "h", true, "tok")
	assert.Error(t, err)
}
