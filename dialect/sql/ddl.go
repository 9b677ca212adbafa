package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

// ErrUnsupported is returned by DDL builders for operations the active
// dialect has no representation for: CREATE/DROP DATABASE and in-place
// column modification on SQLite. It deliberately distinguishes "unsupported
// on this dialect" from an executor rejection, which the source design
// collapsed into a single boolean.
var ErrUnsupported = errors.New("databoss: operation not supported by dialect")

// Column describes one column of a CREATE TABLE, ADD COLUMN or MODIFY
// COLUMN statement. Type is a dialect-neutral type name, optionally with a
// size or precision, and is run through Translate. The zero value of NotNull
// keeps the column nullable, matching the default of the mini-language.
type Column struct {
	Name      string
	Type      string
	NotNull   bool
	Default   any  // nil means no DEFAULT clause.
	Increment bool // auto-increment, dialect-divergent; see CreateTable.
	Primary   bool // accumulate into the table-level PRIMARY KEY clause.
}

// Index describes a plain or unique index over one or more columns. An
// empty Name is auto-generated as idx_<table>_<col>... (unique_ prefix for
// unique indexes).
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// ForeignKey describes a referential constraint. On SQLite, where this
// design emits no usable foreign-key DDL, the constraint is downgraded to a
// plain index on the referencing column; referential integrity is not
// enforced there.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
}

// Table is the ephemeral record CreateTable consumes. PrimaryKey, when set,
// augments the columns flagged Primary (first-seen order, deduplicated).
type Table struct {
	Name       string
	Columns    []*Column
	PrimaryKey []string
}

// CreateTable emits a CREATE TABLE IF NOT EXISTS statement, applying the
// per-dialect auto-increment and primary-key policy:
//
//   - MySQL: auto-increment columns are forced NOT NULL and widened to
//     BIGINT UNSIGNED when the translated type is not integer-like; the
//     statement ends with ENGINE InnoDB.
//   - Postgres: auto-increment becomes SERIAL or BIGSERIAL (BIG* types),
//     with no nullability clause, as SERIAL implies NOT NULL.
//   - SQLite: auto-increment is the fixed INTEGER PRIMARY KEY AUTOINCREMENT
//     fragment; a Primary flag on that column is suppressed so the table
//     never carries two PRIMARY KEY clauses, and no DEFAULT is emitted.
func (b *Builder) CreateTable(t *Table) (string, error) {
	var (
		fragments = make([]string, 0, len(t.Columns)+1)
		pk        []string
		seen      = make(map[string]bool)
	)
	addPK := func(name string) {
		if !seen[name] {
			seen[name] = true
			pk = append(pk, name)
		}
	}
	for _, c := range t.Columns {
		fragments = append(fragments, b.columnFragment(c))
		if c.Primary && !(c.Increment && b.dialect == dialect.SQLite) {
			addPK(c.Name)
		}
	}
	for _, name := range t.PrimaryKey {
		if !b.incrementColumn(t, name) {
			addPK(name)
		}
	}
	if len(pk) > 0 {
		quoted := make([]string, len(pk))
		for i, name := range pk {
			quoted[i] = b.Escape(name, EscapeIdentifier)
		}
		fragments = append(fragments, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(b.Escape(t.Name, EscapeIdentifier))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(fragments, ", "))
	sb.WriteString(")")
	if b.dialect == dialect.MySQL {
		sb.WriteString(" ENGINE InnoDB")
	}
	return sb.String(), nil
}

// incrementColumn reports whether name refers to an auto-increment column of
// t on SQLite, whose PRIMARY KEY is already part of the column fragment.
func (b *Builder) incrementColumn(t *Table, name string) bool {
	if b.dialect != dialect.SQLite {
		return false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Increment
		}
	}
	return false
}

// columnFragment renders one column definition.
func (b *Builder) columnFragment(c *Column) string {
	var sb strings.Builder
	sb.WriteString(b.Escape(c.Name, EscapeIdentifier))
	sb.WriteString(" ")
	switch {
	case c.Increment && b.dialect == dialect.MySQL:
		typ := b.Translate(c.Type)
		if !strings.Contains(strings.ToUpper(typ), "INT") {
			typ = "BIGINT UNSIGNED"
		}
		sb.WriteString(typ)
		sb.WriteString(" NOT NULL AUTO_INCREMENT")
	case c.Increment && b.dialect == dialect.Postgres:
		if strings.Contains(strings.ToUpper(c.Type), "BIG") {
			sb.WriteString("BIGSERIAL")
		} else {
			sb.WriteString("SERIAL")
		}
	case c.Increment && b.dialect == dialect.SQLite:
		sb.WriteString("INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT")
	default:
		sb.WriteString(b.Translate(c.Type))
		if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
	}
	if c.Default != nil && !(c.Increment && b.dialect == dialect.SQLite) {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(b.defaultValue(c.Default))
	}
	return sb.String()
}

// defaultValue formats a DEFAULT clause value: strings are value-escaped,
// booleans spell TRUE/FALSE on postgres and 1/0 elsewhere, numbers pass as
// literal text and anything else degrades to NULL.
func (b *Builder) defaultValue(v any) string {
	switch v := v.(type) {
	case string:
		return b.quoteValue(v)
	case bool:
		if b.dialect == dialect.Postgres {
			if v {
				return "'TRUE'"
			}
			return "'FALSE'"
		}
		if v {
			return "'1'"
		}
		return "'0'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return "NULL"
	}
}

// CreateDatabase emits a CREATE DATABASE statement. MySQL guards with IF NOT
// EXISTS; postgres has no conditional form, so the statement is unguarded.
// SQLite databases are files, not server objects, and return ErrUnsupported.
func (b *Builder) CreateDatabase(name string) (string, error) {
	switch b.dialect {
	case dialect.MySQL:
		return "CREATE DATABASE IF NOT EXISTS " + b.Escape(name, EscapeIdentifier), nil
	case dialect.Postgres:
		return "CREATE DATABASE " + b.Escape(name, EscapeIdentifier), nil
	default:
		return "", ErrUnsupported
	}
}

// DropDatabase emits a DROP DATABASE IF EXISTS statement, or ErrUnsupported
// on SQLite.
func (b *Builder) DropDatabase(name string) (string, error) {
	switch b.dialect {
	case dialect.MySQL, dialect.Postgres:
		return "DROP DATABASE IF EXISTS " + b.Escape(name, EscapeIdentifier), nil
	default:
		return "", ErrUnsupported
	}
}

// DropTable emits a DROP TABLE IF EXISTS statement; uniform across dialects.
func (b *Builder) DropTable(name string) (string, error) {
	return "DROP TABLE IF EXISTS " + b.Escape(name, EscapeIdentifier), nil
}

// AddColumn emits an ALTER TABLE ... ADD COLUMN statement; the column
// fragment follows the same per-dialect rules as CreateTable.
func (b *Builder) AddColumn(table string, c *Column) (string, error) {
	return "ALTER TABLE " + b.Escape(table, EscapeIdentifier) +
		" ADD COLUMN " + b.columnFragment(c), nil
}

// DropColumn emits an ALTER TABLE ... DROP COLUMN statement; uniform across
// dialects.
func (b *Builder) DropColumn(table, column string) (string, error) {
	return "ALTER TABLE " + b.Escape(table, EscapeIdentifier) +
		" DROP COLUMN " + b.Escape(column, EscapeIdentifier), nil
}

// ModifyColumn emits an in-place column type change. SQLite cannot change a
// column type without rebuilding the table, which this design does not do,
// so it returns ErrUnsupported.
func (b *Builder) ModifyColumn(table string, c *Column) (string, error) {
	switch b.dialect {
	case dialect.MySQL:
		return "ALTER TABLE " + b.Escape(table, EscapeIdentifier) +
			" MODIFY COLUMN " + b.columnFragment(c), nil
	case dialect.Postgres:
		return "ALTER TABLE " + b.Escape(table, EscapeIdentifier) +
			" ALTER COLUMN " + b.Escape(c.Name, EscapeIdentifier) +
			" TYPE " + b.Translate(c.Type), nil
	default:
		return "", ErrUnsupported
	}
}

// IndexName returns the caller-supplied index name, or generates
// idx_<table>_<col>... (unique_ prefix for unique indexes) when absent.
func IndexName(idx *Index, table string) string {
	if idx.Name != "" {
		return idx.Name
	}
	prefix := "idx"
	if idx.Unique {
		prefix = "unique"
	}
	return prefix + "_" + table + "_" + strings.Join(idx.Columns, "_")
}

// CreateIndex emits a CREATE [UNIQUE] INDEX statement.
func (b *Builder) CreateIndex(table string, idx *Index) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	sb.WriteString(b.Escape(IndexName(idx, table), EscapeIdentifier))
	sb.WriteString(" ON ")
	sb.WriteString(b.Escape(table, EscapeIdentifier))
	sb.WriteString(" (")
	for i, column := range idx.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.Escape(column, EscapeIdentifier))
	}
	sb.WriteString(")")
	return sb.String(), nil
}

// DropIndex emits a DROP INDEX statement. MySQL scopes index names to their
// table and requires the ON clause; the other dialects drop by bare name.
func (b *Builder) DropIndex(table, name string) (string, error) {
	if b.dialect == dialect.MySQL {
		return "DROP INDEX " + b.Escape(name, EscapeIdentifier) +
			" ON " + b.Escape(table, EscapeIdentifier), nil
	}
	return "DROP INDEX " + b.Escape(name, EscapeIdentifier), nil
}

// AddForeignKey emits an ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY
// statement. On SQLite the constraint is substituted with a plain index on
// the referencing column, a documented downgrade.
func (b *Builder) AddForeignKey(table string, fk *ForeignKey) (string, error) {
	if b.dialect == dialect.SQLite {
		return b.CreateIndex(table, &Index{Name: fk.Name, Columns: []string{fk.Column}})
	}
	name := fk.Name
	if name == "" {
		name = "fk_" + table + "_" + fk.Column
	}
	return "ALTER TABLE " + b.Escape(table, EscapeIdentifier) +
		" ADD CONSTRAINT " + b.Escape(name, EscapeIdentifier) +
		" FOREIGN KEY (" + b.Escape(fk.Column, EscapeIdentifier) + ")" +
		" REFERENCES " + b.Escape(fk.RefTable, EscapeIdentifier) +
		" (" + b.Escape(fk.RefColumn, EscapeIdentifier) + ")", nil
}
