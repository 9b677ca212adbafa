package sql

import (
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

// EscapeMode selects which quoting rule Escape applies. It is a call
// parameter only and is never persisted.
type EscapeMode int

const (
	// EscapeAlias quotes a "name{alias}" pair as `"name" AS "alias"`.
	EscapeAlias EscapeMode = iota
	// EscapeIdentifier quotes a single identifier.
	EscapeIdentifier
	// EscapeQualified quotes a "table.column" pair as `"table"."column"`.
	EscapeQualified
	// EscapeValue quotes a literal value in dialect style. It is used for
	// literal IN-list members and DDL defaults, never for the primary
	// parameterized path.
	EscapeValue
)

// Escape quotes v according to the given mode. All three dialects quote
// identifiers with double quotes (MySQL sessions are opened in ANSI_QUOTES
// mode for this reason). Embedded quote characters are doubled literally
// rather than rejected; identifiers containing quotes are the caller's
// problem. An empty string passes through unchanged.
func (b *Builder) Escape(v string, mode EscapeMode) string {
	switch mode {
	case EscapeAlias:
		if name, alias, ok := splitAlias(v); ok {
			return quoteIdent(name) + " AS " + quoteIdent(alias)
		}
		return quoteIdent(v)
	case EscapeQualified:
		if table, column, ok := splitQualified(v); ok {
			return quoteIdent(table) + "." + quoteIdent(column)
		}
		return quoteIdent(v)
	case EscapeValue:
		return b.quoteValue(v)
	default:
		return quoteIdent(v)
	}
}

// quoteIdent wraps v in double quotes, doubling any embedded double quote.
func quoteIdent(v string) string {
	if v == "" {
		return v
	}
	if strings.Contains(v, `"`) {
		v = strings.ReplaceAll(v, `"`, `""`)
	}
	return `"` + v + `"`
}

// splitAlias splits a "name{alias}" value into its parts.
func splitAlias(v string) (name, alias string, ok bool) {
	i := strings.IndexByte(v, '{')
	if i <= 0 || !strings.HasSuffix(v, "}") {
		return "", "", false
	}
	name, alias = v[:i], v[i+1:len(v)-1]
	if alias == "" {
		return "", "", false
	}
	return name, alias, true
}

// splitQualified splits a "table.column" value into its parts.
func splitQualified(v string) (table, column string, ok bool) {
	i := strings.IndexByte(v, '.')
	if i <= 0 || i == len(v)-1 {
		return "", "", false
	}
	table, column = v[:i], v[i+1:]
	if strings.Contains(column, ".") {
		return "", "", false
	}
	return table, column, true
}

// quoteValue quotes a literal string value for the builder's dialect by
// doubling single quotes. MySQL additionally treats backslash as an escape
// character inside string literals, so backslashes are doubled first.
func (b *Builder) quoteValue(v string) string {
	if b.dialect == dialect.MySQL && strings.Contains(v, `\`) {
		v = strings.ReplaceAll(v, `\`, `\\`)
	}
	if strings.Contains(v, "'") {
		v = strings.ReplaceAll(v, "'", "''")
	}
	return "'" + v + "'"
}
