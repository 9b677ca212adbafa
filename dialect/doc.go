// Package dialect defines the SQL dialect abstraction for databoss.
//
// A dialect identifies one of the three supported database families and is
// fixed once, when a connection is constructed; every downstream decision the
// engine makes (identifier quoting, LIMIT syntax, type translation, DDL
// capabilities) is a pure function of the dialect and the operation inputs.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The Driver interface is the executor capability the engine emits SQL to:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback, and the
// ExecQuerier interface is implemented by both Driver and Tx.
//
// # Usage
//
//	import (
//	    "github.com/vaibhavpandeyvpz/databoss/dialect"
//	    "github.com/vaibhavpandeyvpz/databoss/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
package dialect
