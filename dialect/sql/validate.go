package sql

import (
	"fmt"
	"strings"
)

// ValidationError describes one problem found in a table definition.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the outcome of validating a table definition.
// Validation is purely advisory: statement generation never consults it.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateTable checks a table definition for mistakes the DDL builder would
// otherwise bake into a statement: duplicate or unnamed columns, more than
// one auto-increment column, a missing primary key, and neutral types that
// would pass through the translator untouched.
func (b *Builder) ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	var (
		names      = make(map[string]bool, len(t.Columns))
		increments int
		keyed      = len(t.PrimaryKey) > 0
	)
	for _, c := range t.Columns {
		if c.Name == "" {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "column without a name",
			})
			continue
		}
		if names[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		names[c.Name] = true
		if c.Increment {
			increments++
			keyed = true
		}
		if c.Primary {
			keyed = true
		}
		if base, _ := splitTypeName(c.Type); !c.Increment {
			if _, ok := typeTable[b.dialect][base]; !ok {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.Name,
					Message: fmt.Sprintf("type %q is unknown and passes through untranslated", c.Type),
				})
			}
		}
	}
	if increments > 1 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: "more than one auto-increment column",
		})
	}
	for _, name := range t.PrimaryKey {
		if !names[name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  name,
				Message: "primary key references non-existent column",
			})
		}
	}
	if !keyed {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	return result
}

// ValidateIndex checks an index definition against its table. When the table
// carries no column definitions its shape is unknown and the per-column
// existence checks are skipped.
func (b *Builder) ValidateIndex(t *Table, idx *Index) *ValidationResult {
	result := &ValidationResult{}
	if len(idx.Columns) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: fmt.Sprintf("index %q has no columns", IndexName(idx, t.Name)),
		})
	}
	if len(t.Columns) == 0 {
		return result
	}
	names := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		names[c.Name] = true
	}
	for _, column := range idx.Columns {
		if !names[column] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  column,
				Message: fmt.Sprintf("index %q references non-existent column", IndexName(idx, t.Name)),
			})
		}
	}
	return result
}
