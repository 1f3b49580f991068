package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"practice-engine/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMigrateDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestSplitStatements(t *testing.T) {
	script := `-- content tables
CREATE TABLE A (
    ID NUMBER
);

CREATE INDEX IDX_A ON A(ID);
INSERT INTO A VALUES (1)`

	stmts := splitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE A (\n    ID NUMBER\n)", stmts[0])
	assert.Equal(t, "CREATE INDEX IDX_A ON A(ID)", stmts[1])
	assert.Equal(t, "INSERT INTO A VALUES (1)", stmts[2])
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	content, err := migrationFiles.ReadFile("migrations/000002_create_practice_attempts.up.sql")
	require.NoError(t, err)
	stmts := splitStatements(string(content))
	assert.Len(t, stmts, 2)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
	}
}

func TestRunMigrations_AppliesPending(t *testing.T) {
	db, mock := setupMigrateDB(t)
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql": {Data: []byte("CREATE TABLE A (ID NUMBER);\n")},
		"migrations/000002_b.up.sql": {Data: []byte("CREATE TABLE B (ID NUMBER);\nCREATE INDEX IDX_B ON B(ID);\n")},
	}

	mock.ExpectQuery("FROM USER_TABLES").WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE SCHEMA_MIGRATIONS").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery("FROM SCHEMA_MIGRATIONS").WithArgs("000001_a").WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(1))

	mock.ExpectQuery("FROM SCHEMA_MIGRATIONS").WithArgs("000002_b").WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE B (ID NUMBER)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IDX_B ON B(ID)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO SCHEMA_MIGRATIONS").WithArgs("000002_b").WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := runMigrations(context.Background(), db, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_b"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db, mock := setupMigrateDB(t)
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql": {Data: []byte("CREATE TABLE A (ID NUMBER);\n")},
	}

	mock.ExpectQuery("FROM USER_TABLES").WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(1))
	mock.ExpectQuery("FROM SCHEMA_MIGRATIONS").WithArgs("000001_a").WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE A").WillReturnError(errors.New("ORA-00955: name is already used"))

	applied, err := runMigrations(context.Background(), db, fsys)
	assert.ErrorContains(t, err, "000001_a")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLXDB_RejectsUnknownDriver(t *testing.T) {
	_, err := NewSQLXDB(&config.Config{DB: config.DBConfig{Driver: "postgres"}})
	assert.ErrorContains(t, err, "unsupported database driver")
}
