// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// New returns a fresh schema, closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Options{Driver: repository.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.Migrate(ctx, db))
	return db
}

// User inserts an active user with the given role.
func User(t testing.TB, db *sqlx.DB, telegramID int64, role domain.Role) domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := domain.User{TelegramID: telegramID, FirstName: "user", Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewUsersRepo(db).Create(context.Background(), nil, &u))
	return u
}
