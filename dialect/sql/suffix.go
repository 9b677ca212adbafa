package sql

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

// pkColumn is the primary-key column the UPDATE/DELETE subquery fallback
// selects on. It is a fixed assumption of this design rather than per-table
// configuration; see DESIGN.md.
const pkColumn = "id"

// Order is a single ORDER BY term.
type Order struct {
	Column    string
	Direction string
}

// Asc returns an ascending order term for the column.
func Asc(column string) Order { return Order{Column: column, Direction: "ASC"} }

// Desc returns a descending order term for the column.
func Desc(column string) Order { return Order{Column: column, Direction: "DESC"} }

// Sort is an ordered list of ORDER BY terms; slice order is preserved into
// the emitted clause.
type Sort []Order

// Values holds column/value pairs for INSERT and UPDATE statements. Columns
// are emitted in sorted order so that statement text is deterministic.
type Values map[string]any

func (v Values) columns() []string {
	columns := make([]string, 0, len(v))
	for column := range v {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// Suffix produces the "WHERE ... ORDER BY ... LIMIT/OFFSET" text appended
// after a base statement, with its ordered parameter list. allowOrderLimit
// is true for SELECT-class statements; when false, ORDER BY and LIMIT are
// emitted only on MySQL, the one dialect that supports them natively inside
// UPDATE and DELETE. The other dialects go through the subquery fallback in
// the statement builders instead.
func (b *Builder) Suffix(q Query, allowOrderLimit bool) (string, []any) {
	return b.suffix(q, allowOrderLimit, 0)
}

func (b *Builder) suffix(q Query, allowOrderLimit bool, off int) (string, []any) {
	var sb strings.Builder
	where, args := b.compileFilter(q.Filter, opAnd, off)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	ordered := allowOrderLimit || b.dialect == dialect.MySQL
	if len(q.Sort) > 0 && ordered {
		sb.WriteString(" ORDER BY ")
		for i, o := range q.Sort {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.Escape(o.Column, EscapeQualified))
			sb.WriteString(" ")
			sb.WriteString(strings.ToUpper(o.Direction))
		}
	}
	if q.Limit > 0 && ordered {
		switch b.dialect {
		case dialect.MySQL:
			if q.Offset > 0 {
				sb.WriteString(" LIMIT " + strconv.Itoa(q.Offset) + ", " + strconv.Itoa(q.Limit))
			} else {
				sb.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
			}
		default:
			sb.WriteString(" LIMIT " + strconv.Itoa(q.Limit) + " OFFSET " + strconv.Itoa(q.Offset))
		}
	}
	return sb.String(), args
}

// BuildSelect emits a SELECT statement. Columns may use the "name{alias}"
// form; nil or empty columns select "*".
func (b *Builder) BuildSelect(table string, columns []string, q Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, column := range columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			if column == "*" {
				sb.WriteString("*")
				continue
			}
			sb.WriteString(b.Escape(column, EscapeAlias))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.Escape(table, EscapeIdentifier))
	suffix, args := b.suffix(q, true, 0)
	sb.WriteString(suffix)
	return sb.String(), args
}

// BuildAggregate emits a single-value aggregate SELECT, e.g.
// `SELECT COUNT(*) FROM "users" WHERE ...`. The column is "*" for COUNT or a
// column reference for the other functions.
func (b *Builder) BuildAggregate(fn, table, column string, q Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.ToUpper(fn))
	sb.WriteString("(")
	if column == "" || column == "*" {
		sb.WriteString("*")
	} else {
		sb.WriteString(b.Escape(column, EscapeQualified))
	}
	sb.WriteString(") FROM ")
	sb.WriteString(b.Escape(table, EscapeIdentifier))
	suffix, args := b.suffix(q, true, 0)
	sb.WriteString(suffix)
	return sb.String(), args
}

// BuildInsert emits a single-row INSERT. When returning is non-empty, a
// RETURNING clause for that column is appended; the façade uses this on
// postgres, whose driver does not surface LastInsertId.
func (b *Builder) BuildInsert(table string, values Values, returning string) (string, []any) {
	s := b.stmt()
	s.writeString("INSERT INTO ")
	s.writeString(b.Escape(table, EscapeIdentifier))
	s.writeString(" (")
	columns := values.columns()
	for i, column := range columns {
		if i > 0 {
			s.writeString(", ")
		}
		s.writeString(b.Escape(column, EscapeIdentifier))
	}
	s.writeString(") VALUES (")
	for i, column := range columns {
		if i > 0 {
			s.writeString(", ")
		}
		s.arg(coerceParam(values[column]))
	}
	s.writeString(")")
	if returning != "" {
		s.writeString(" RETURNING ")
		s.writeString(b.Escape(returning, EscapeIdentifier))
	}
	return s.String(), s.args
}

// BuildUpdate emits an UPDATE statement. When q carries sort or pagination
// on a dialect that cannot express ORDER BY/LIMIT inside UPDATE, the
// statement is rewritten to update the rows whose primary key is selected by
// an inner, natively sorted and limited SELECT.
func (b *Builder) BuildUpdate(table string, values Values, q Query) (string, []any) {
	s := b.stmt()
	s.writeString("UPDATE ")
	s.writeString(b.Escape(table, EscapeIdentifier))
	s.writeString(" SET ")
	for i, column := range values.columns() {
		if i > 0 {
			s.writeString(", ")
		}
		s.writeString(b.Escape(column, EscapeIdentifier))
		s.writeString(" = ")
		s.arg(coerceParam(values[column]))
	}
	if b.needsSubquery(q) {
		inner, innerArgs := b.innerSelect(table, q, len(s.args))
		s.writeString(" WHERE ")
		s.writeString(b.Escape(pkColumn, EscapeIdentifier))
		s.writeString(" IN (")
		s.writeString(inner)
		s.writeString(")")
		s.args = append(s.args, innerArgs...)
		return s.String(), s.args
	}
	suffix, args := b.suffix(q, false, len(s.args))
	s.writeString(suffix)
	s.args = append(s.args, args...)
	return s.String(), s.args
}

// BuildDelete emits a DELETE statement, applying the same subquery rewrite
// as BuildUpdate when needed.
func (b *Builder) BuildDelete(table string, q Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(b.Escape(table, EscapeIdentifier))
	if b.needsSubquery(q) {
		inner, args := b.innerSelect(table, q, 0)
		sb.WriteString(" WHERE ")
		sb.WriteString(b.Escape(pkColumn, EscapeIdentifier))
		sb.WriteString(" IN (")
		sb.WriteString(inner)
		sb.WriteString(")")
		return sb.String(), args
	}
	suffix, args := b.suffix(q, false, 0)
	sb.WriteString(suffix)
	return sb.String(), args
}

// needsSubquery reports whether an UPDATE/DELETE must be rewritten through
// the primary-key subquery: the caller wants sort or pagination and the
// dialect cannot express either natively in UPDATE/DELETE.
func (b *Builder) needsSubquery(q Query) bool {
	if b.dialect == dialect.MySQL {
		return false
	}
	return len(q.Sort) > 0 || q.Limit > 0
}

// innerSelect builds the primary-key SELECT the subquery fallback nests
// inside "WHERE id IN (...)". Placeholder numbering continues after off
// outer parameters (the SET clause of an UPDATE).
func (b *Builder) innerSelect(table string, q Query, off int) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.Escape(pkColumn, EscapeIdentifier))
	sb.WriteString(" FROM ")
	sb.WriteString(b.Escape(table, EscapeIdentifier))
	suffix, args := b.suffix(q, true, off)
	sb.WriteString(suffix)
	return sb.String(), args
}
