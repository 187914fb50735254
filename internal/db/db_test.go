package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookit.db")
	gdb, err := Open("sqlite://"+path, Options{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	user := models.User{Username: "lina", Email: "lina@bookit.local", Password: "x", Role: models.RoleUser}
	require.NoError(t, gdb.Create(&user).Error)
	assert.Len(t, user.ID, 36)

	dup := models.User{Username: "lina", Email: "other@bookit.local", Password: "x", Role: models.RoleUser}
	err = gdb.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("mysql://localhost/bookit", Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("x.db"))
	assert.Equal(t, "x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("x.db?mode=rwc"))
	assert.Equal(t, "x.db?_pragma=busy_timeout(1)", sqliteDSN("x.db?_pragma=busy_timeout(1)"))
}

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	serial := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	deadlock := &pgconn.PgError{Code: "40P01"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsRetryable(unique))
	assert.True(t, IsRetryable(serial))
	assert.True(t, IsRetryable(deadlock))
	assert.True(t, IsRetryable(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsUniqueViolation(nil))
}
