package dialect

import (
	"context"
	"fmt"
	"log/slog"
)

// Dialect names for the supported database families.
const (
	// MySQL is the MySQL/MariaDB dialect.
	MySQL = "mysql"
	// Postgres is the PostgreSQL dialect.
	Postgres = "postgres"
	// SQLite is the embedded SQLite dialect.
	SQLite = "sqlite"
)

// ExecQuerier wraps the two standard database operations. It is implemented
// by both Driver and Tx, so engine code that only executes statements can
// run inside or outside a transaction transparently.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The v argument
	// receives the execution result (an *sql.Result) when non-nil.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The v argument receives
	// the returned rows (an *sql.Rows wrapper).
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the executor capability databoss emits SQL text and positional
// parameters to. Implementations are expected to propagate database errors
// unmodified; databoss performs no wrapping and no retries.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transaction scope over a Driver connection.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx whose Commit and Rollback are no-ops, backed by the
// given driver. It is used when a batch joins an already-open transaction
// scope and must not issue an inner commit or rollback.
func NopTx(d Driver) Tx {
	return nopTx{d}
}

// DebugDriver is a driver that logs all driver operations.
type DebugDriver struct {
	Driver              // underlying driver.
	log    *slog.Logger // log function. defaults to slog.Default.
}

// Debug gets a driver and an optional logger and returns a debugged driver
// that logs every statement before it is handed to the underlying driver.
func Debug(d Driver, logger ...*slog.Logger) Driver {
	drv := &DebugDriver{Driver: d, log: slog.Default()}
	if len(logger) == 1 {
		drv.log = logger[0]
	}
	return drv
}

// Exec logs its params and calls the underlying driver Exec method.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "driver.Exec", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Driver.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying driver Query method.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "driver.Query", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Driver.Query(ctx, query, args, v)
}

// Tx adds a log-id for the transaction and calls the underlying driver Tx command.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log.InfoContext(ctx, "driver.Tx started")
	return &DebugTx{tx, d.log, ctx}, nil
}

// DebugTx is a transaction implementation that logs all transaction operations.
type DebugTx struct {
	Tx                  // underlying transaction.
	log *slog.Logger    // log function. defaults to slog.Default.
	ctx context.Context // underlying transaction context.
}

// Exec logs its params and calls the underlying transaction Exec method.
func (d *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "tx.Exec", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Tx.Exec(ctx, query, args, v)
}

// Query logs its params and calls the underlying transaction Query method.
func (d *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	d.log.InfoContext(ctx, "tx.Query", "query", query, "args", fmt.Sprintf("%v", args))
	return d.Tx.Query(ctx, query, args, v)
}

// Commit logs this step and calls the underlying transaction Commit method.
func (d *DebugTx) Commit() error {
	d.log.InfoContext(d.ctx, "tx.Commit")
	return d.Tx.Commit()
}

// Rollback logs this step and calls the underlying transaction Rollback method.
func (d *DebugTx) Rollback() error {
	d.log.InfoContext(d.ctx, "tx.Rollback")
	return d.Tx.Rollback()
}
