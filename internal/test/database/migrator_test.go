package database_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-admin-backend/internal/database"
)

const (
	createTable  = `CREATE TABLE IF NOT EXISTS schema_migrations`
	checkApplied = `SELECT COUNT(*) FROM schema_migrations WHERE name = $1`
	recordRun    = `INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())`
)

func newMock(t *testing.T) (*database.Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewMigratorWithDB(sqlx.NewDb(db, "sqlmock"), nil), mock
}

func TestMigrations_Ordered(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_sites.sql", "002_user_accounts.sql"}, names)
}

func TestRun_AppliesPendingOnly(t *testing.T) {
	m, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(createTable)).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta(checkApplied)).
		WithArgs("001_sites.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta(checkApplied)).
		WithArgs("002_user_accounts.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS user_accounts`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(recordRun)).
		WithArgs("002_user_accounts.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, m.Run(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_FailedMigrationRollsBack(t *testing.T) {
	m, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(createTable)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(checkApplied)).
		WithArgs("001_sites.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS stored_files`)).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_sites.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_MigrationTableFailure(t *testing.T) {
	m, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(createTable)).WillReturnError(errors.New("no connection"))

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
