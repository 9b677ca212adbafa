package databoss

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
	"github.com/vaibhavpandeyvpz/databoss/dialect/sql"
)

// mockClient returns a client over a sqlmock connection with exact statement
// matching, so the tests pin the emitted SQL byte for byte.
func mockClient(t *testing.T, name string, opts ...Option) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewClient(sql.OpenDB(name, db), opts...), mock
}

func TestSelect(t *testing.T) {
	client, mock := mockClient(t, dialect.SQLite)
	mock.ExpectQuery(`SELECT * FROM "products" WHERE "duration" > ? AND ("category" = ? OR "featured" = ?) ORDER BY "duration" ASC LIMIT 2 OFFSET 0`).
		WithArgs(100, "electronics", "1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "radio").
			AddRow(2, "tv"))

	rows, err := client.Select(context.Background(), "products", nil, Query{
		Filter: NewFilter().
			Set("duration{>}", 100).
			Or(NewFilter().
				Set("category", "electronics").
				Set("featured", true)),
		Sort:  Sort{Asc("duration")},
		Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"id": int64(1), "name": "radio"}, rows[0])
	assert.Equal(t, Row{"id": int64(2), "name": "tv"}, rows[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectColumns(t *testing.T) {
	client, mock := mockClient(t, dialect.MySQL)
	mock.ExpectQuery(`SELECT "id", "name" AS "n" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "n"}).AddRow(1, "john"))

	rows, err := client.Select(context.Background(), "users", []string{"id", "name{n}"}, Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "john", rows[0]["n"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// Drivers hand text columns back as []byte; rows must carry strings instead.
func TestSelectByteColumns(t *testing.T) {
	client, mock := mockClient(t, dialect.MySQL)
	mock.ExpectQuery(`SELECT * FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("john")))

	rows, err := client.Select(context.Background(), "users", nil, Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "john", rows[0]["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectQuery(`SELECT * FROM "users" WHERE "id" = ? LIMIT 1 OFFSET 0`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "john"))

		row, err := client.Get(context.Background(), "users", nil, Query{
			Filter: NewFilter().Set("id", 7),
		})
		require.NoError(t, err)
		assert.Equal(t, "john", row["name"])
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("not found", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectQuery(`SELECT * FROM "users" WHERE "id" = ? LIMIT 1 OFFSET 0`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		_, err := client.Get(context.Background(), "users", nil, Query{
			Filter: NewFilter().Set("id", 7),
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, IsNotFound(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInsert(t *testing.T) {
	t.Run("last insert id", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectExec(`INSERT INTO "users" ("age", "name") VALUES (?, ?)`).
			WithArgs(30, "john").
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := client.Insert(context.Background(), "users", Values{"name": "john", "age": 30})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("postgres returning", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "users" ("age", "name") VALUES ($1, $2) RETURNING "id"`).
			WithArgs(30, "john").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		id, err := client.Insert(context.Background(), "users", Values{"name": "john", "age": 30})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate(t *testing.T) {
	client, mock := mockClient(t, dialect.Postgres)
	mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
		WithArgs("jane", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := client.Update(context.Background(), "users", Values{"name": "jane"}, Query{
		Filter: NewFilter().Set("id", 7),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSubqueryFallback(t *testing.T) {
	client, mock := mockClient(t, dialect.Postgres)
	mock.ExpectExec(`UPDATE "users" SET "rank" = $1 WHERE "id" IN (SELECT "id" FROM "users" ORDER BY "score" DESC LIMIT 3 OFFSET 0)`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := client.Update(context.Background(), "users", Values{"rank": 1}, Query{
		Sort:  Sort{Desc("score")},
		Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	client, mock := mockClient(t, dialect.MySQL)
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "expired" = ?`).
		WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 5))

	affected, err := client.Delete(context.Background(), "sessions", Query{
		Filter: NewFilter().Set("expired", true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregates(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectQuery(`SELECT COUNT(*) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		n, err := client.Count(context.Background(), "users", Query{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("has", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectQuery(`SELECT COUNT(*) FROM "users" WHERE "id" = ?`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		ok, err := client.Has(context.Background(), "users", Query{
			Filter: NewFilter().Set("id", 7),
		})
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("sum", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT SUM("total") FROM "orders" WHERE "status" = $1`).
			WithArgs("paid").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(49.5))

		sum, err := client.Sum(context.Background(), "orders", "total", Query{
			Filter: NewFilter().Set("status", "paid"),
		})
		require.NoError(t, err)
		assert.Equal(t, 49.5, sum)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("aggregate over empty set is zero", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectQuery(`SELECT MAX("total") FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		max, err := client.Max(context.Background(), "orders", "total", Query{})
		require.NoError(t, err)
		assert.Zero(t, max)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "users" ("name") VALUES (?)`).
			WithArgs("john").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := client.WithTx(context.Background(), func(tx *Client) error {
			_, err := tx.Insert(context.Background(), "users", Values{"name": "john"})
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("rollback on error", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("boom")
		err := client.WithTx(context.Background(), func(*Client) error {
			return sentinel
		})
		assert.Same(t, sentinel, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("rollback failure wraps the original error", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		sentinel := errors.New("boom")
		err := client.WithTx(context.Background(), func(*Client) error {
			return sentinel
		})
		var rbErr *RollbackError
		require.ErrorAs(t, err, &rbErr)
		assert.ErrorIs(t, err, sentinel)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("nested joins the open transaction", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := client.WithTx(context.Background(), func(tx *Client) error {
			return tx.WithTx(context.Background(), func(inner *Client) error {
				_, err := inner.Delete(context.Background(), "sessions", Query{})
				return err
			})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("inner error rolls back the outer transaction", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("boom")
		err := client.WithTx(context.Background(), func(tx *Client) error {
			return tx.WithTx(context.Background(), func(*Client) error {
				return sentinel
			})
		})
		assert.Same(t, sentinel, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTx(t *testing.T) {
	t.Run("explicit commit", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "sessions"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txc, tx, err := client.Tx(context.Background())
		require.NoError(t, err)
		_, err = txc.Delete(context.Background(), "sessions", Query{})
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("nested start is rejected", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectBegin()
		mock.ExpectRollback()

		txc, tx, err := client.Tx(context.Background())
		require.NoError(t, err)
		_, _, err = txc.Tx(context.Background())
		assert.ErrorIs(t, err, ErrTxStarted)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchemaOperations(t *testing.T) {
	t.Run("create table", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "users" ("id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, "name" TEXT NOT NULL)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := client.CreateTable(context.Background(), &Table{
			Name: "users",
			Columns: []*Column{
				{Name: "id", Type: "INT", Increment: true, Primary: true},
				{Name: "name", Type: "VARCHAR(255)", NotNull: true},
			},
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("create database unsupported on sqlite", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)

		err := client.CreateDatabase(context.Background(), "app")
		assert.True(t, IsUnsupported(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("create index", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres)
		mock.ExpectExec(`CREATE INDEX "idx_users_email_name" ON "users" ("email", "name")`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := client.CreateIndex(context.Background(), "users", &Index{
			Columns: []string{"email", "name"},
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("create unique index", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectExec(`CREATE UNIQUE INDEX "unique_users_email" ON "users" ("email")`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := client.CreateUniqueIndex(context.Background(), "users", &Index{
			Columns: []string{"email"},
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("drop index on mysql names the table", func(t *testing.T) {
		client, mock := mockClient(t, dialect.MySQL)
		mock.ExpectExec(`DROP INDEX "idx_users_email" ON "users"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := client.DropIndex(context.Background(), "users", "idx_users_email")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("add foreign key downgrades on sqlite", func(t *testing.T) {
		client, mock := mockClient(t, dialect.SQLite)
		mock.ExpectExec(`CREATE INDEX "idx_posts_user_id" ON "posts" ("user_id")`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := client.AddForeignKey(context.Background(), "posts", &ForeignKey{
			Column: "user_id", RefTable: "users", RefColumn: "id",
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClientOptions(t *testing.T) {
	t.Run("dialect", func(t *testing.T) {
		client, _ := mockClient(t, dialect.Postgres)
		assert.Equal(t, dialect.Postgres, client.Dialect())
	})
	t.Run("stats disabled by default", func(t *testing.T) {
		client, _ := mockClient(t, dialect.Postgres)
		assert.Nil(t, client.Stats())
	})
	t.Run("stats", func(t *testing.T) {
		client, mock := mockClient(t, dialect.Postgres, CollectStats())
		require.NotNil(t, client.Stats())

		mock.ExpectExec(`DELETE FROM "sessions"`).WillReturnResult(sqlmock.NewResult(0, 0))
		_, err := client.Delete(context.Background(), "sessions", Query{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), client.Stats().TotalExecs.Load())
	})
}
