// Package databoss is a thin fluent wrapper around database/sql providing
// convenience methods for CRUD operations, simple aggregation and basic
// schema manipulation across MySQL, PostgreSQL and SQLite.
//
// The heavy lifting happens in dialect/sql: a stateless engine that takes a
// dialect-agnostic filter/sort/pagination description and emits correctly
// parameterized SQL for each dialect. This package is the glue that hands
// the engine's output to an executor and hydrates generic rows back.
//
//	client, err := databoss.Open(databoss.Settings{
//	    Dialect:  dialect.SQLite,
//	    File:     "app.db",
//	})
//	rows, err := client.Select(ctx, "products", nil, databoss.Query{
//	    Filter: databoss.NewFilter().
//	        Set("duration{>}", 100).
//	        Or(databoss.NewFilter().
//	            Set("category", "electronics").
//	            Set("featured", true)),
//	    Sort:  databoss.Sort{databoss.Asc("duration")},
//	    Limit: 2,
//	})
package databoss

import (
	"context"
	"log/slog"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
	"github.com/vaibhavpandeyvpz/databoss/dialect/sql"
)

// Re-exported engine types, so most callers only import this package.
type (
	// Filter is the nested mapping describing WHERE-clause intent.
	Filter = sql.Filter
	// Query bundles filter, sort and pagination for one statement.
	Query = sql.Query
	// Sort is an ordered list of ORDER BY terms.
	Sort = sql.Sort
	// Order is a single ORDER BY term.
	Order = sql.Order
	// Values holds column/value pairs for INSERT and UPDATE.
	Values = sql.Values
	// Column describes a column in schema operations.
	Column = sql.Column
	// Index describes a plain or unique index.
	Index = sql.Index
	// ForeignKey describes a referential constraint.
	ForeignKey = sql.ForeignKey
	// Table describes a CREATE TABLE request.
	Table = sql.Table
)

// Row is a generic result row; no further hydration is performed.
type Row map[string]any

// NewFilter returns an empty filter.
func NewFilter() *Filter { return sql.NewFilter() }

// Asc returns an ascending order term for the column.
func Asc(column string) Order { return sql.Asc(column) }

// Desc returns a descending order term for the column.
func Desc(column string) Order { return sql.Desc(column) }

// Client is the public façade. It is a thin shell over a dialect.Driver and
// the stateless engine; the driver connection is the only mutable state.
type Client struct {
	driver   dialect.Driver      // nil inside a transaction scope
	conn     dialect.ExecQuerier // driver or open transaction
	builder  *sql.Builder
	stats    *sql.QueryStats
	log      *slog.Logger
	validate bool
}

// Option configures a Client.
type Option func(*options)

type options struct {
	debug     bool
	log       *slog.Logger
	collect   bool
	statsOpts []sql.StatsOption
	validate  bool
}

// Debug logs every statement through slog before execution.
func Debug() Option {
	return func(o *options) { o.debug = true }
}

// WithLogger sets the logger used by Debug and ValidateDDL.
// Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// CollectStats wraps the driver with query statistics collection, readable
// via Client.Stats.
func CollectStats(opts ...sql.StatsOption) Option {
	return func(o *options) {
		o.collect = true
		o.statsOpts = append(o.statsOpts, opts...)
	}
}

// ValidateDDL logs advisory warnings about table and index definitions
// before schema statements run. Validation never blocks a statement.
func ValidateDDL() Option {
	return func(o *options) { o.validate = true }
}

// NewClient returns a Client over an open driver. The driver's dialect is
// fixed for the lifetime of the client.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	c := &Client{
		builder:  sql.Dialect(drv.Dialect()),
		log:      o.log,
		validate: o.validate,
	}
	if o.collect {
		sd := sql.Instrument(drv, o.statsOpts...)
		c.stats = sd.Stats()
		drv = sd
	}
	if o.debug {
		drv = dialect.Debug(drv, o.log)
	}
	c.driver = drv
	c.conn = drv
	return c
}

// Dialect returns the dialect name the client emits SQL for.
func (c *Client) Dialect() string { return c.builder.DialectName() }

// Stats returns the query statistics counters, or nil when CollectStats was
// not enabled.
func (c *Client) Stats() *sql.QueryStats { return c.stats }

// Close closes the underlying driver connection. Calling Close on a
// transaction-scoped client is a no-op.
func (c *Client) Close() error {
	if c.driver == nil {
		return nil
	}
	return c.driver.Close()
}

// Select returns the rows matching q. Columns may use the "name{alias}"
// form; nil columns select "*".
func (c *Client) Select(ctx context.Context, table string, columns []string, q Query) ([]Row, error) {
	stmt, args := c.builder.BuildSelect(table, columns, q)
	rows := &sql.Rows{}
	if err := c.conn.Query(ctx, stmt, args, rows); err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// Get returns the single row matching q, or ErrNotFound.
func (c *Client) Get(ctx context.Context, table string, columns []string, q Query) (Row, error) {
	q.Limit, q.Offset = 1, 0
	rows, err := c.Select(ctx, table, columns, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Insert inserts one row and returns its auto-generated id. Postgres has no
// usable LastInsertId, so the statement carries a RETURNING clause for the
// "id" column there; on tables without such a column, use Exec-style inserts
// through the engine directly.
func (c *Client) Insert(ctx context.Context, table string, values Values) (int64, error) {
	if c.Dialect() == dialect.Postgres {
		stmt, args := c.builder.BuildInsert(table, values, "id")
		rows := &sql.Rows{}
		if err := c.conn.Query(ctx, stmt, args, rows); err != nil {
			return 0, err
		}
		defer rows.Close()
		var id int64
		if rows.Next() {
			if err := rows.Scan(&id); err != nil {
				return 0, err
			}
		}
		return id, rows.Err()
	}
	stmt, args := c.builder.BuildInsert(table, values, "")
	var res sql.Result
	if err := c.conn.Exec(ctx, stmt, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update updates the rows matching q and returns the affected row count.
// Sort and pagination are honored on every dialect, through the primary-key
// subquery fallback where UPDATE cannot express them natively.
func (c *Client) Update(ctx context.Context, table string, values Values, q Query) (int64, error) {
	stmt, args := c.builder.BuildUpdate(table, values, q)
	return c.exec(ctx, stmt, args)
}

// Delete deletes the rows matching q and returns the affected row count.
func (c *Client) Delete(ctx context.Context, table string, q Query) (int64, error) {
	stmt, args := c.builder.BuildDelete(table, q)
	return c.exec(ctx, stmt, args)
}

// Count returns the number of rows matching q.
func (c *Client) Count(ctx context.Context, table string, q Query) (int64, error) {
	stmt, args := c.builder.BuildAggregate("COUNT", table, "*", q)
	rows := &sql.Rows{}
	if err := c.conn.Query(ctx, stmt, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var n sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n.Int64, rows.Err()
}

// Has reports whether any row matches q.
func (c *Client) Has(ctx context.Context, table string, q Query) (bool, error) {
	n, err := c.Count(ctx, table, q)
	return n > 0, err
}

// Sum returns the sum of the column over the rows matching q.
func (c *Client) Sum(ctx context.Context, table, column string, q Query) (float64, error) {
	return c.aggregate(ctx, "SUM", table, column, q)
}

// Avg returns the average of the column over the rows matching q.
func (c *Client) Avg(ctx context.Context, table, column string, q Query) (float64, error) {
	return c.aggregate(ctx, "AVG", table, column, q)
}

// Max returns the maximum of the column over the rows matching q.
func (c *Client) Max(ctx context.Context, table, column string, q Query) (float64, error) {
	return c.aggregate(ctx, "MAX", table, column, q)
}

// Min returns the minimum of the column over the rows matching q.
func (c *Client) Min(ctx context.Context, table, column string, q Query) (float64, error) {
	return c.aggregate(ctx, "MIN", table, column, q)
}

func (c *Client) aggregate(ctx context.Context, fn, table, column string, q Query) (float64, error) {
	stmt, args := c.builder.BuildAggregate(fn, table, column, q)
	rows := &sql.Rows{}
	if err := c.conn.Query(ctx, stmt, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var v sql.NullFloat64
	if rows.Next() {
		if err := rows.Scan(&v); err != nil {
			return 0, err
		}
	}
	return v.Float64, rows.Err()
}

// Tx starts an explicit transaction and returns a client scoped to it; the
// caller owns Commit and Rollback on the returned transaction. Calling Tx on
// a client that is already transaction-scoped returns ErrTxStarted; use
// WithTx to join an open transaction instead.
func (c *Client) Tx(ctx context.Context) (*Client, dialect.Tx, error) {
	if c.driver == nil {
		return nil, nil, ErrTxStarted
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, nil, err
	}
	txc := &Client{
		conn:     tx,
		builder:  c.builder,
		stats:    c.stats,
		log:      c.log,
		validate: c.validate,
	}
	return txc, tx, nil
}

// WithTx runs fn inside a transaction scope: begin, run, commit; any error
// rolls the transaction back and is returned unmodified (a rollback failure
// is reported as a RollbackError wrapping the original). A nested call
// joins the open transaction and issues no inner commit or rollback, so an
// inner failure can never be committed away by mistake.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if c.driver == nil {
		return fn(c)
	}
	txc, tx, err := c.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(txc); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	return tx.Commit()
}

// CreateDatabase creates a database. Unsupported on SQLite.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	return c.ddl(ctx)(c.builder.CreateDatabase(name))
}

// DropDatabase drops a database if it exists. Unsupported on SQLite.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	return c.ddl(ctx)(c.builder.DropDatabase(name))
}

// CreateTable creates the table if it does not exist.
func (c *Client) CreateTable(ctx context.Context, t *Table) error {
	if c.validate {
		c.logValidation(ctx, c.builder.ValidateTable(t))
	}
	return c.ddl(ctx)(c.builder.CreateTable(t))
}

// DropTable drops the table if it exists.
func (c *Client) DropTable(ctx context.Context, name string) error {
	return c.ddl(ctx)(c.builder.DropTable(name))
}

// AddColumn adds a column to the table.
func (c *Client) AddColumn(ctx context.Context, table string, col *Column) error {
	return c.ddl(ctx)(c.builder.AddColumn(table, col))
}

// DropColumn drops a column from the table.
func (c *Client) DropColumn(ctx context.Context, table, column string) error {
	return c.ddl(ctx)(c.builder.DropColumn(table, column))
}

// ModifyColumn changes a column type in place. Unsupported on SQLite.
func (c *Client) ModifyColumn(ctx context.Context, table string, col *Column) error {
	return c.ddl(ctx)(c.builder.ModifyColumn(table, col))
}

// CreateIndex creates an index; the name is auto-generated when idx.Name is
// empty.
func (c *Client) CreateIndex(ctx context.Context, table string, idx *Index) error {
	if c.validate {
		c.logValidation(ctx, c.builder.ValidateIndex(&Table{Name: table}, idx))
	}
	return c.ddl(ctx)(c.builder.CreateIndex(table, idx))
}

// CreateUniqueIndex creates a unique index; shorthand for CreateIndex with
// Unique set.
func (c *Client) CreateUniqueIndex(ctx context.Context, table string, idx *Index) error {
	unique := *idx
	unique.Unique = true
	return c.CreateIndex(ctx, table, &unique)
}

// DropIndex drops an index by name.
func (c *Client) DropIndex(ctx context.Context, table, name string) error {
	return c.ddl(ctx)(c.builder.DropIndex(table, name))
}

// AddForeignKey adds a referential constraint; on SQLite it degrades to a
// plain index on the referencing column.
func (c *Client) AddForeignKey(ctx context.Context, table string, fk *ForeignKey) error {
	return c.ddl(ctx)(c.builder.AddForeignKey(table, fk))
}

// ddl returns a closure executing a built DDL statement, short-circuiting
// builder errors such as ErrUnsupported.
func (c *Client) ddl(ctx context.Context) func(stmt string, err error) error {
	return func(stmt string, err error) error {
		if err != nil {
			return err
		}
		return c.conn.Exec(ctx, stmt, []any{}, nil)
	}
}

func (c *Client) logValidation(ctx context.Context, result *sql.ValidationResult) {
	for _, e := range result.Errors {
		c.log.ErrorContext(ctx, "ddl validation", "issue", e.Error())
	}
	for _, w := range result.Warnings {
		c.log.WarnContext(ctx, "ddl validation", "issue", w.Error())
	}
}

// exec runs a statement and returns the affected row count.
func (c *Client) exec(ctx context.Context, stmt string, args []any) (int64, error) {
	var res sql.Result
	if err := c.conn.Exec(ctx, stmt, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanRows hydrates generic rows. Byte slices are converted to strings so
// rows read the same across the three drivers.
func scanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
