package sql

import (
	"strconv"
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

// Builder is the query-building and cross-dialect translation engine. It is
// stateless: a Builder holds only the dialect name, and every method is a
// pure function of the dialect and its inputs, so a single Builder is safe
// for concurrent use.
type Builder struct {
	dialect string
}

// Dialect creates a new Builder for the given dialect.
//
//	sql.Dialect(dialect.Postgres).BuildSelect("users", nil, sql.Query{})
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// DialectName returns the dialect the builder emits SQL for.
func (b *Builder) DialectName() string { return b.dialect }

// Query bundles the dialect-agnostic filter, sort and pagination intent of a
// single statement. The zero value selects everything, unsorted, unbounded.
type Query struct {
	// Filter describes the WHERE clause. A nil or empty filter matches all rows.
	Filter *Filter
	// Sort is applied in iteration order. An empty sort emits no ORDER BY.
	Sort Sort
	// Limit bounds the number of rows. Zero means unbounded.
	Limit int
	// Offset is the row offset, applied only when Limit > 0.
	Offset int
}

// stmt accumulates SQL text and positional parameters for one statement.
// Placeholders are emitted in dialect style ("?" for mysql/sqlite, "$N" for
// postgres) and parameters are appended in emission order, which keeps the
// Nth placeholder bound to the Nth parameter at any nesting depth.
type stmt struct {
	sb      strings.Builder
	dialect string
	args    []any
}

func (b *Builder) stmt() *stmt {
	return &stmt{dialect: b.dialect}
}

func (s *stmt) writeString(v string) { s.sb.WriteString(v) }

// arg writes a placeholder for v and records it as the next parameter.
func (s *stmt) arg(v any) {
	s.args = append(s.args, v)
	s.sb.WriteString(placeholder(s.dialect, len(s.args)))
}

// placeholder returns the n-th (1-based) parameter placeholder in dialect
// style: "$N" for postgres, "?" everywhere else.
func placeholder(name string, n int) string {
	if name == dialect.Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (b *Builder) placeholder(n int) string {
	return placeholder(b.dialect, n)
}

// String returns the accumulated statement text.
func (s *stmt) String() string { return s.sb.String() }
