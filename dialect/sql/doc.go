// Package sql provides the dialect-agnostic statement engine and database
// driver glue for databoss.
//
// The engine is stateless: a Builder carries only the dialect name, and each
// Build* method turns a generic description of intent (filter, sort,
// pagination, column values) into a SQL string plus its parameter list. The
// same description produces correct output for MySQL, PostgreSQL and SQLite.
//
// # Filters
//
// Filters describe WHERE clauses through a small key mini-language. A key is
// a column name with an optional operator token in braces:
//
//	f := sql.NewFilter().
//	    Set("duration{>}", 100).
//	    Set("category", []string{"books", "music"}).
//	    Set("deleted_at", nil)
//
//	// "duration" > ? AND "category" IN ('books', 'music') AND "deleted_at" IS NULL
//
// The operator resolves against the value: "!" means <>, NOT IN or IS NOT
// depending on whether the value is a scalar, a list or nil. Nested filters
// group with parentheses:
//
//	f := sql.NewFilter().
//	    Set("duration{>}", 100).
//	    Or(sql.NewFilter().
//	        Set("category", "electronics").
//	        Set("featured", true))
//
//	// "duration" > ? AND ("category" = ? OR "featured" = ?)
//
// # Builders
//
// A Builder is obtained per dialect and shared freely across goroutines:
//
//	import "github.com/vaibhavpandeyvpz/databoss/dialect"
//
//	b := sql.Dialect(dialect.Postgres)
//	stmt, args := b.BuildSelect("users", nil, sql.Query{
//	    Filter: sql.NewFilter().Set("status", "active"),
//	    Sort:   sql.Sort{sql.Desc("created_at")},
//	    Limit:  10,
//	})
//	// SELECT * FROM "users" WHERE "status" = $1 ORDER BY "created_at" DESC LIMIT 10
//
// BuildUpdate and BuildDelete accept the same Query; on dialects where those
// statements cannot carry ORDER BY or LIMIT, the engine rewrites them as a
// primary-key subquery with identical row selection.
//
// # Drivers
//
// Open wraps database/sql behind the dialect.Driver interface used by the
// rest of the module. MySQL connections are opened with ANSI_QUOTES so the
// engine can quote identifiers with double quotes on every dialect:
//
//	drv, err := sql.Open(dialect.MySQL, "root:pass@tcp(localhost:3306)/test")
//
// Instrument layers statement statistics over any driver; see QueryStats.
package sql
