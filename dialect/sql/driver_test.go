package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/syssam/mapper/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithVars(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.Execute(WithVar(context.Background(), "foo", "bar"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET foo = 'bar'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET foo = 'baz'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.SelectValue(WithVar(WithVar(context.Background(), "foo", "bar"), "foo", "baz"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("SET foo = 'qux'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))
	n, err := drv.Delete(WithVar(context.Background(), "foo", "qux"), "DELETE FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVarFromContext(t *testing.T) {
	base := WithVar(context.Background(), "foo", "bar")
	ctx := WithIntVar(base, "foo", 2)

	v, ok := VarFromContext(ctx, "foo")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok = VarFromContext(base, "foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", v, "derived contexts do not change their parent")

	_, ok = VarFromContext(ctx, "missing")
	assert.False(t, ok)
}

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dialect string
	}{
		{"Postgres", "postgres", dialect.Postgres},
		{"Pgx", "pgx", dialect.Postgres},
		{"MySQL", "mysql", dialect.MySQL},
		{"SQLite", "sqlite", dialect.SQLite},
		{"SQLite3", "sqlite3", dialect.SQLite},
		{"Other", "oracle", dialect.SQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.driver, db)
			assert.NotNil(t, drv)
			assert.Same(t, db, drv.DB())
			assert.Equal(t, tt.dialect, drv.Dialect())
		})
	}
}

func TestDriverExecute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	t.Run("rows", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(int64(1), []byte("Alice")).
				AddRow(int64(2), "Bob"))

		rows, err := drv.Execute(context.Background(), `SELECT * FROM "users"`)
		require.NoError(t, err)
		assert.Equal(t, []dialect.Row{
			{"id": int64(1), "name": "Alice"},
			{"id": int64(2), "name": "Bob"},
		}, rows)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null values", func(t *testing.T) {
		mock.ExpectQuery("SELECT").
			WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).
				AddRow("Alice", nil).
				AddRow(nil, "bob@example.com"))

		rows, err := drv.Execute(context.Background(), "SELECT name, email FROM users")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Nil(t, rows[0]["email"])
		assert.Nil(t, rows[1]["name"])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		rows, err := drv.Execute(context.Background(), "SELECT id FROM users")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("error is wrapped", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mock.ExpectQuery("SELECT").WillReturnError(expectedErr)

		_, err := drv.Execute(context.Background(), "SELECT")
		require.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "dialect/sql: execute")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverSelectValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count_id", "other"}).AddRow(int64(42), "x").AddRow(int64(1), "y"))
	v, err := drv.SelectValue(context.Background(), "SELECT COUNT(`users`.`id`) FROM `users`")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	mock.ExpectQuery("SELECT MAX").WillReturnRows(sqlmock.NewRows([]string{"max_id"}))
	v, err = drv.SelectValue(context.Background(), "SELECT MAX(`users`.`id`) FROM `users`")
	require.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverMutations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(7, 1))
	id, err := drv.Insert(ctx, `INSERT INTO "users" ("name") VALUES ('a')`)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := drv.Update(ctx, `UPDATE "users" SET "name" = 'b'`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 5))
	n, err = drv.Delete(ctx, `DELETE FROM "users"`)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	expectedErr := errors.New("constraint violation")
	mock.ExpectExec("UPDATE").WillReturnError(expectedErr)
	_, err = drv.Update(ctx, `UPDATE "users" SET "id" = 1`)
	require.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "dialect/sql: update")

	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))
	_, err = drv.Insert(ctx, `INSERT INTO "users" DEFAULT VALUES`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last insert id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverInsertPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO").WillReturnResult(sqlmock.NewResult(0, 1))
	id, err := drv.Insert(ctx, `INSERT INTO "users" ("name") VALUES ('a')`)
	require.NoError(t, err)
	assert.Zero(t, id)

	mock.ExpectQuery("INSERT INTO").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	id, err = drv.Insert(ctx, `INSERT INTO "users" ("name") VALUES ('a') RETURNING "id"`)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTables(t *testing.T) {
	tests := []struct {
		dialect string
		query   string
	}{
		{dialect.SQLite, "SELECT name FROM sqlite_master"},
		{dialect.MySQL, "SHOW TABLES"},
		{dialect.Postgres, `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema\(\)`},
		{dialect.SQL, "SELECT table_name FROM information_schema.tables WHERE table_schema NOT IN"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(tt.query).
				WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("posts").AddRow([]byte("users")))
			tables, err := OpenDB(tt.dialect, db).Tables(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"posts", "users"}, tables)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDriverQuoter(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lite := OpenDB(dialect.SQLite, db)
	assert.Equal(t, `"users"`, lite.QuoteTableName("users"))
	assert.Equal(t, `"name"`, lite.QuoteColumnName("name"))
	assert.Equal(t, `'it''s'`, lite.Quote("it's"))
	assert.Equal(t, "'t'", lite.Quote(true))

	my := OpenDB(dialect.MySQL, db)
	assert.Equal(t, "`users`", my.QuoteTableName("users"))
	assert.Equal(t, "'1'", my.Quote(true))
	assert.Equal(t, "NULL", my.Quote(nil))
}

// TestContextCancellation tests that context cancellation is respected.
func TestContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
	_, err = drv.Execute(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestDriverClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	require.NoError(t, OpenDB(dialect.SQLite, db).Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

// BenchmarkDriver benchmarks driver operations.
func BenchmarkDriver(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	b.Run("Execute_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			_, _ = drv.Execute(context.Background(), "SELECT 1")
		}
	})

	b.Run("Update_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
			_, _ = drv.Update(context.Background(), "UPDATE t SET a = 1")
		}
	})
}

// TestIsValidIdentifier tests SQL identifier validation.
func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid_simple", "foo", true},
		{"valid_with_underscore", "foo_bar", true},
		{"valid_with_number", "foo123", true},
		{"valid_with_dot", "schema.table", true},
		{"valid_starting_underscore", "_private", true},
		{"invalid_empty", "", false},
		{"invalid_starting_number", "123foo", false},
		{"invalid_with_space", "foo bar", false},
		{"invalid_with_quote", "foo'bar", false},
		{"invalid_with_semicolon", "foo;DROP TABLE", false},
		{"invalid_with_dash", "foo-bar", false},
		{"invalid_too_long", string(make([]byte, 129)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isValidIdentifier(tt.input))
		})
	}
}

// TestEscapeStringValue tests SQL string value escaping.
func TestEscapeStringValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no_escaping_needed", "hello", "hello"},
		{"single_quote", "it's", "it''s"},
		{"multiple_quotes", "he said 'hello'", "he said ''hello''"},
		{"backslash", `path\to\file`, `path\\to\\file`},
		{"both_quote_and_backslash", `it's a \test`, `it''s a \\test`},
		{"empty_string", "", ""},
		{"sql_injection_attempt", "'; DROP TABLE users; --", "''; DROP TABLE users; --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeStringValue(tt.input))
		})
	}
}

// TestWithVarsInvalidIdentifier tests that invalid identifiers are rejected.
func TestWithVarsInvalidIdentifier(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)

	// Attempt SQL injection via variable name
	_, err = drv.Execute(WithVar(context.Background(), "foo; DROP TABLE users; --", "bar"), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session variable name")
}

// TestWithVarsEscapedValue tests that values are properly escaped.
func TestWithVarsEscapedValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)

	// The escaped value should have doubled single quotes
	mock.ExpectExec("SET foo = 'it''s escaped'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("RESET foo").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = drv.Execute(WithVar(context.Background(), "foo", "it's escaped"), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
