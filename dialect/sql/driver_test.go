package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
		})
	}
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "mysql", driverName(dialect.MySQL))
	assert.Equal(t, "postgres", driverName(dialect.Postgres))
	// modernc.org/sqlite registers as "sqlite", not "sqlite3".
	assert.Equal(t, "sqlite", driverName(dialect.SQLite))
}

func TestAnsiSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "bare dsn",
			source: "root@tcp(localhost:3306)/test",
			want:   "root@tcp(localhost:3306)/test?sql_mode=%27ANSI_QUOTES%27",
		},
		{
			name:   "dsn with params",
			source: "root@tcp(localhost:3306)/test?parseTime=true",
			want:   "root@tcp(localhost:3306)/test?parseTime=true&sql_mode=%27ANSI_QUOTES%27",
		},
		{
			name:   "caller-configured sql_mode wins",
			source: "root@tcp(localhost:3306)/test?sql_mode=%27TRADITIONAL%27",
			want:   "root@tcp(localhost:3306)/test?sql_mode=%27TRADITIONAL%27",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ansiSource(tt.source))
		})
	}
}

func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "john"))
	rows := &Rows{}
	err = drv.Query(context.Background(), `SELECT * FROM "users" WHERE "status" = $1`, []any{"active"}, rows)
	require.NoError(t, err)
	require.True(t, rows.Next())
	var (
		id   int64
		name string
	)
	require.NoError(t, rows.Scan(&id, &name))
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "john", name)
	require.NoError(t, rows.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverQueryInvalidReceiver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	err = drv.Query(context.Background(), "SELECT 1", []any{}, &struct{}{})
	assert.Error(t, err)
	err = drv.Query(context.Background(), "SELECT 1", "not-a-slice", &Rows{})
	assert.Error(t, err)
}

func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)

	t.Run("nil receiver", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM "sessions"`).WillReturnResult(sqlmock.NewResult(0, 3))
		err := drv.Exec(context.Background(), `DELETE FROM "sessions"`, []any{}, nil)
		require.NoError(t, err)
	})
	t.Run("result receiver", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO "users"`).
			WithArgs("john").
			WillReturnResult(sqlmock.NewResult(42, 1))
		var res Result
		err := drv.Exec(context.Background(), `INSERT INTO "users" ("name") VALUES (?)`, []any{"john"}, &res)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})
	t.Run("invalid receiver", func(t *testing.T) {
		err := drv.Exec(context.Background(), "DELETE FROM x", []any{}, &struct{}{})
		assert.Error(t, err)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

// Driver errors must surface unmodified so callers can match on the concrete
// driver error types.
func TestDriverErrorsUnwrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	sentinel := errors.New("connection reset")
	mock.ExpectExec("UPDATE").WillReturnError(sentinel)
	err = drv.Exec(context.Background(), `UPDATE "users" SET "a" = $1`, []any{1}, nil)
	assert.Same(t, sentinel, err)
}

func TestDriverTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.Exec(context.Background(), `INSERT INTO "users" ("name") VALUES (?)`, []any{"john"}, nil))
		require.NoError(t, tx.Commit())
	})
	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())
	})
	require.NoError(t, mock.ExpectationsWereMet())
}
