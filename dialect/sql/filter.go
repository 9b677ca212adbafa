package sql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Combinator keys recognized at any filter level. Their value must be a
// nested *Filter, whose compiled expression is parenthesized and joined to
// its siblings with the parent combinator.
const (
	opAnd = "AND"
	opOr  = "OR"
)

// Filter is an insertion-ordered mapping describing WHERE-clause intent.
// A key is either the literal combinator "AND" or "OR" (value: nested
// *Filter), or a column reference of the form "column" or "column{op}" with
// op one of =, !=, !, >, >=, <, <=, ~ and !~. Values are nil, a scalar, or a
// slice (IN / NOT IN semantics). Keys on one level are ANDed unless nested
// under "OR".
//
// Go maps do not preserve insertion order, so Filter keeps its own key
// order; entries compile in the order they were Set.
type Filter struct {
	keys   []string
	values map[string]any
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{values: make(map[string]any)}
}

// Set records the key/value entry and returns the filter for chaining.
// Setting an existing key replaces its value but keeps its original position.
func (f *Filter) Set(key string, value any) *Filter {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// And nests a filter group joined to its siblings with AND.
func (f *Filter) And(nested *Filter) *Filter { return f.Set(opAnd, nested) }

// Or nests a filter group joined to its siblings with OR.
func (f *Filter) Or(nested *Filter) *Filter { return f.Set(opOr, nested) }

// Len returns the number of entries. A nil filter has zero entries.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// CompileFilter translates the filter into a SQL boolean expression and an
// ordered parameter list. The Nth placeholder in the expression corresponds
// to the Nth parameter, at any nesting depth, and compiling the same filter
// twice yields byte-identical output.
func (b *Builder) CompileFilter(f *Filter) (string, []any) {
	return b.compileFilter(f, opAnd, 0)
}

// compileFilter joins the filter entries with the given combinator.
// Placeholder numbering starts after off parameters, so a compiled filter
// can be embedded in a statement that already carries parameters.
func (b *Builder) compileFilter(f *Filter, combinator string, off int) (string, []any) {
	if f.Len() == 0 {
		return "", nil
	}
	var (
		clauses []string
		args    []any
	)
	for _, key := range f.keys {
		value := f.values[key]
		switch key {
		case opAnd, opOr:
			nested, ok := value.(*Filter)
			if !ok {
				continue
			}
			sub, subArgs := b.compileFilter(nested, key, off+len(args))
			if sub == "" {
				continue
			}
			clauses = append(clauses, "("+sub+")")
			args = append(args, subArgs...)
		default:
			column, token := splitFilterKey(key)
			clause, clauseArgs := b.compileClause(column, token, value, off+len(args))
			clauses = append(clauses, clause)
			args = append(args, clauseArgs...)
		}
	}
	return strings.TrimSpace(strings.Join(clauses, " "+combinator+" ")), args
}

// splitFilterKey splits a filter key into column name and operator token.
// The first "{" and a trailing "}" delimit the token; column names containing
// braces are therefore not representable, which is a deliberate limit of the
// mini-language rather than regex-engine behavior.
func splitFilterKey(key string) (column, token string) {
	i := strings.IndexByte(key, '{')
	if i > 0 && strings.HasSuffix(key, "}") {
		return key[:i], key[i+1 : len(key)-1]
	}
	return key, ""
}

// valueKind classifies a filter value at runtime.
type valueKind int

const (
	kindScalar valueKind = iota
	kindNull
	kindList
)

// classifyValue reports the runtime kind of a filter value and, for lists,
// the members as []any. Byte slices are scalars, not lists.
func classifyValue(v any) (valueKind, []any) {
	if v == nil {
		return kindNull, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return kindScalar, nil
		}
		members := make([]any, rv.Len())
		for i := range members {
			members[i] = rv.Index(i).Interface()
		}
		return kindList, members
	default:
		return kindScalar, nil
	}
}

// operatorFor normalizes an operator token and a runtime value kind into the
// emitted SQL operator. Comparison tokens pass through unchanged even for
// null or list values; the resulting SQL fails at the executor, which is the
// documented behavior (no client-side type checks).
func operatorFor(token string, kind valueKind) string {
	switch token {
	case ">", ">=", "<", "<=":
		return token
	case "!", "!=":
		switch kind {
		case kindNull:
			return "IS NOT"
		case kindList:
			return "NOT IN"
		default:
			return "!="
		}
	case "~":
		return "LIKE"
	case "!~":
		return "NOT LIKE"
	default:
		// Absent or unrecognized token.
		switch kind {
		case kindNull:
			return "IS"
		case kindList:
			return "IN"
		default:
			return "="
		}
	}
}

// alwaysFalse is emitted in place of an IN/NOT IN clause over an empty list:
// "IN ()" is not valid SQL and an empty IN-list must never match. NOT IN over
// an empty list degenerates to the same constant, preserving the source
// behavior (arguably it should be vacuously true; see DESIGN.md).
const alwaysFalse = "1 = 0"

// compileClause emits a single "<column> <operator> <value>" clause.
func (b *Builder) compileClause(column, token string, value any, off int) (string, []any) {
	var (
		col        = b.Escape(column, EscapeQualified)
		kind, list = classifyValue(value)
		op         = operatorFor(token, kind)
	)
	switch kind {
	case kindNull:
		return col + " " + op + " NULL", nil
	case kindList:
		members := make([]string, 0, len(list))
		for _, m := range list {
			if m == nil {
				continue
			}
			members = append(members, b.literal(m))
		}
		if len(members) == 0 {
			return alwaysFalse, nil
		}
		return col + " " + op + " (" + strings.Join(members, ", ") + ")", nil
	default:
		return col + " " + op + " " + b.placeholder(off+1), []any{coerceParam(value)}
	}
}

// literal renders an IN-list member as escaped literal text. Numeric members
// pass through as-is; everything else goes through value escaping. List
// members are embedded as literals rather than bound, relying on the value
// escaper for safety; the trade-off is recorded in DESIGN.md.
func (b *Builder) literal(v any) string {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return b.quoteValue("1")
		}
		return b.quoteValue("0")
	case string:
		return b.quoteValue(v)
	default:
		return b.quoteValue(fmt.Sprint(v))
	}
}

// coerceParam normalizes a scalar before it joins the parameter list.
// Booleans travel as the string literals "1"/"0", which all three dialects
// accept for boolean-ish columns.
func coerceParam(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return "0"
	}
	return v
}
