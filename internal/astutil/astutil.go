// Package astutil walks an already-parsed github.com/rqlite/sql statement
// tree to answer two questions the Statement Type Inferencer and the
// Ephemeral Schema Oracle both need: which identifiers does a statement
// reference, and which named bind parameters does it declare.
//
// rqlite/sql documents CREATE/ALTER/DROP TABLE's field layout clearly
// enough that schema.go and schema_parser.go type-switch on it directly
// (*rsql.CreateTableStatement, *rsql.ColumnDefinition, ...), but its
// SELECT/INSERT/UPDATE/DELETE field layout (Source, Table, WhereExpr,
// Assignments, ...) isn't exercised anywhere in the reference corpus, so
// asserting those field names here would be guessing. Instead this package
// walks the parsed tree structurally via reflection, recognizing only two
// things every rqlite/sql node is confirmed to support: *rsql.Ident carries
// a plain Name string field (schema_parser.go's colIdent.Name.String(),
// migration.go's column.Name.Name), and every node renders itself via
// String() (used the same way on Expr leaves throughout schema_parser.go
// and migration.go). That's enough to recognize table/column identifiers
// and bind-parameter leaves without depending on any statement-specific
// struct shape.
package astutil

import (
	"fmt"
	"reflect"
	"regexp"

	rsql "github.com/rqlite/sql"
)

// walk recursively visits every struct field, slice element, pointer, and
// interface value reachable from v, calling fn once for each pointer or
// interface value it finds (the two kinds an rqlite/sql AST node can be
// held as). The parsed tree has no cycles, so no visited-set is needed.
func walk(v reflect.Value, fn func(reflect.Value)) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		fn(v)
		walk(v.Elem(), fn)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if !f.CanInterface() {
				continue
			}
			walk(f, fn)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), fn)
		}
	}
}

// Idents returns the Name of every *rsql.Ident reachable from node
// (typically an rsql.Statement), in depth-first encounter order, including
// duplicates. This surfaces table names, column references, and aliases
// alike; callers that need just the tables filter the result against a
// known table set (the Schema Map).
func Idents(node any) []string {
	var names []string
	walk(reflect.ValueOf(node), func(v reflect.Value) {
		if id, ok := v.Interface().(*rsql.Ident); ok && id != nil {
			names = append(names, id.Name)
		}
	})
	return names
}

// reBindLeaf matches a node's own rendered text when that node is, in its
// entirety, a named bind parameter: ":name", "@name", or "$name". Anchoring
// to the full string (rather than searching within it) is what keeps this
// a per-node leaf check rather than a keyword search over a larger
// re-serialized expression: a compound expression's String() (e.g. "n + :id")
// never matches, only the bind parameter's own node does.
var reBindLeaf = regexp.MustCompile(`^[:@$][A-Za-z_][A-Za-z0-9_]*$`)

// BindParameterNames returns the named bind parameters reachable from node,
// in first-occurrence depth-first order, deduplicated (a parameter
// referenced twice in one statement binds once). Every reachable node that
// renders itself via String() is a candidate; *rsql.Ident is excluded since
// an identifier's own rendering is never prefixed with a bind sigil.
func BindParameterNames(node any) []string {
	seen := make(map[string]bool)
	var names []string
	walk(reflect.ValueOf(node), func(v reflect.Value) {
		if _, isIdent := v.Interface().(*rsql.Ident); isIdent {
			return
		}
		stringer, ok := v.Interface().(fmt.Stringer)
		if !ok {
			return
		}
		text := stringer.String()
		if !reBindLeaf.MatchString(text) {
			return
		}
		name := text[1:]
		if seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	})
	return names
}
