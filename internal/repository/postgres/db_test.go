package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "00001_create_user_account.sql", entries[0].Name())
	assert.Equal(t, "00002_create_password_reset_token.sql", entries[1].Name())
}

func TestMigrateRunsEmbeddedDir(t *testing.T) {
	db, _ := newMockDB(t)

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	var gotDB *sql.DB
	gooseUp = func(ctx context.Context, conn *sql.DB, dir string) error {
		gotDB = conn
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)
	assert.Same(t, db.DB, gotDB)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
