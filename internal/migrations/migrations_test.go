package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	content, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)

	sqlText := string(content)
	assert.True(t, strings.HasPrefix(sqlText, "-- +goose Up"))
	assert.Contains(t, sqlText, "-- +goose Down")
	for _, table := range []string{"users", "refresh_tokens", "password_reset_tokens"} {
		assert.Contains(t, sqlText, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, sqlText, "users_email_key")
	assert.Contains(t, sqlText, "users_username_key")
}

func TestUp(t *testing.T) {
	original := gooseUp
	t.Cleanup(func() { gooseUp = original })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Up(context.Background(), nil, "auth_migrations"))
	assert.Equal(t, ".", gotDir)

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("lock timeout") }
	err := Up(context.Background(), nil, "")
	assert.ErrorContains(t, err, "lock timeout")
}
