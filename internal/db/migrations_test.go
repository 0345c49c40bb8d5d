package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	database, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return database, mock
}

func TestMigrateExecutesAllPostgresStatements(t *testing.T) {
	database, mock := newMockDB(t)
	for range postgresStatements {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMigrateStopsAtFirstFailure(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnError(errors.New("permission denied"))

	err := Migrate(database)
	if err == nil {
		t.Fatal("expected migration error")
	}
	if want := "migration 2 failed: permission denied"; err.Error() != want {
		t.Fatalf("unexpected error: got=%q want=%q", err.Error(), want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSyncSequencesOnPostgres(t *testing.T) {
	database, mock := newMockDB(t)
	for _, table := range []string{"profiles", "contracts", "jobs"} {
		mock.ExpectExec("SELECT setval\\(pg_get_serial_sequence\\('" + table + "'").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := SyncSequences(database); err != nil {
		t.Fatalf("sync sequences: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStatementsForUnknownDialect(t *testing.T) {
	if _, err := statementsFor("mysql"); err == nil {
		t.Fatal("expected an error for mysql")
	}
}
