package sql

import (
	"strings"

	"github.com/vaibhavpandeyvpz/databoss/dialect"
)

// typeTable maps a dialect-neutral base type name to its native spelling per
// dialect. The three maps are kept side by side so the full three-way
// divergence for any one type is auditable at a glance.
var typeTable = map[string]map[string]string{
	dialect.MySQL: {
		"BOOLEAN":    "TINYINT(1)",
		"TINYINT":    "TINYINT",
		"SMALLINT":   "SMALLINT",
		"MEDIUMINT":  "MEDIUMINT",
		"INT":        "INT",
		"INTEGER":    "INT",
		"BIGINT":     "BIGINT",
		"SERIAL":     "INT",
		"BIGSERIAL":  "BIGINT",
		"DECIMAL":    "DECIMAL",
		"NUMERIC":    "DECIMAL",
		"FLOAT":      "FLOAT",
		"DOUBLE":     "DOUBLE",
		"REAL":       "DOUBLE",
		"CHAR":       "CHAR",
		"VARCHAR":    "VARCHAR",
		"TINYTEXT":   "TINYTEXT",
		"TEXT":       "TEXT",
		"MEDIUMTEXT": "MEDIUMTEXT",
		"LONGTEXT":   "LONGTEXT",
		"BINARY":     "BINARY",
		"VARBINARY":  "VARBINARY",
		"TINYBLOB":   "TINYBLOB",
		"BLOB":       "BLOB",
		"MEDIUMBLOB": "MEDIUMBLOB",
		"LONGBLOB":   "LONGBLOB",
		"DATE":       "DATE",
		"TIME":       "TIME",
		"DATETIME":   "DATETIME",
		"TIMESTAMP":  "TIMESTAMP",
		"JSON":       "JSON",
		"UUID":       "CHAR(36)",
	},
	dialect.Postgres: {
		"BOOLEAN":    "BOOLEAN",
		"TINYINT":    "SMALLINT",
		"SMALLINT":   "SMALLINT",
		"MEDIUMINT":  "INTEGER",
		"INT":        "INTEGER",
		"INTEGER":    "INTEGER",
		"BIGINT":     "BIGINT",
		"SERIAL":     "SERIAL",
		"BIGSERIAL":  "BIGSERIAL",
		"DECIMAL":    "NUMERIC",
		"NUMERIC":    "NUMERIC",
		"FLOAT":      "REAL",
		"DOUBLE":     "DOUBLE PRECISION",
		"REAL":       "REAL",
		"CHAR":       "CHAR",
		"VARCHAR":    "VARCHAR",
		"TINYTEXT":   "TEXT",
		"TEXT":       "TEXT",
		"MEDIUMTEXT": "TEXT",
		"LONGTEXT":   "TEXT",
		"BINARY":     "BYTEA",
		"VARBINARY":  "BYTEA",
		"TINYBLOB":   "BYTEA",
		"BLOB":       "BYTEA",
		"MEDIUMBLOB": "BYTEA",
		"LONGBLOB":   "BYTEA",
		"DATE":       "DATE",
		"TIME":       "TIME",
		"DATETIME":   "TIMESTAMP",
		"TIMESTAMP":  "TIMESTAMP",
		"JSON":       "JSONB",
		"UUID":       "UUID",
	},
	dialect.SQLite: {
		"BOOLEAN":    "INTEGER",
		"TINYINT":    "INTEGER",
		"SMALLINT":   "INTEGER",
		"MEDIUMINT":  "INTEGER",
		"INT":        "INTEGER",
		"INTEGER":    "INTEGER",
		"BIGINT":     "INTEGER",
		"SERIAL":     "INTEGER",
		"BIGSERIAL":  "INTEGER",
		"DECIMAL":    "NUMERIC",
		"NUMERIC":    "NUMERIC",
		"FLOAT":      "REAL",
		"DOUBLE":     "REAL",
		"REAL":       "REAL",
		"CHAR":       "TEXT",
		"VARCHAR":    "TEXT",
		"TINYTEXT":   "TEXT",
		"TEXT":       "TEXT",
		"MEDIUMTEXT": "TEXT",
		"LONGTEXT":   "TEXT",
		"BINARY":     "BLOB",
		"VARBINARY":  "BLOB",
		"TINYBLOB":   "BLOB",
		"BLOB":       "BLOB",
		"MEDIUMBLOB": "BLOB",
		"LONGBLOB":   "BLOB",
		"DATE":       "TEXT",
		"TIME":       "TEXT",
		"DATETIME":   "TEXT",
		"TIMESTAMP":  "TEXT",
		"JSON":       "TEXT",
		"UUID":       "TEXT",
	},
}

// parameterizable lists translated types whose original size/precision text
// is meaningful and carried over, e.g. VARCHAR(255) or DECIMAL(10,2).
var parameterizable = map[string]bool{
	"VARCHAR": true,
	"CHAR":    true,
	"DECIMAL": true,
	"NUMERIC": true,
	"FLOAT":   true,
	"DOUBLE":  true,
}

// Translate maps a dialect-neutral column type, optionally carrying a
// parenthesized size or precision, to the given dialect's native type.
// Unknown base types pass through verbatim, so already-dialect-specific
// types can be used untouched. Pure and total.
func Translate(typeName, name string) string {
	base, params := splitTypeName(typeName)
	table, ok := typeTable[name]
	if !ok {
		return typeName
	}
	mapped, ok := table[base]
	if !ok {
		return typeName
	}
	if params != "" && parameterizable[mapped] && !strings.Contains(mapped, "(") {
		return mapped + params
	}
	return mapped
}

// Translate maps the type for the builder's dialect.
func (b *Builder) Translate(typeName string) string {
	return Translate(typeName, b.dialect)
}

// splitTypeName splits "varchar(255)" into its uppercased base type and the
// raw parameter text including parentheses.
func splitTypeName(typeName string) (base, params string) {
	if i := strings.IndexByte(typeName, '('); i >= 0 {
		return strings.ToUpper(strings.TrimSpace(typeName[:i])), typeName[i:]
	}
	return strings.ToUpper(strings.TrimSpace(typeName)), ""
}
