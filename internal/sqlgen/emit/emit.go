// Package emit implements the Code Emitter (spec.md §4.8): entity types
// per table, row types per query expression, per-statement accessor
// signatures, and the migration routine the generated code targets
// (sqlg.ApplyMigration, runtime_migration.go).
package emit

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// Emit renders the full generated file for one declaration block: entity
// types for every table in schema, row types and accessors for every
// inferred query, and the migration routine bound to migration. The
// returned bytes are gofmt-canonical; go/format is the only correct way to
// produce that, which is why it is the one standard-library choice in this
// package (no third-party Go source formatter exists in the example pack
// or the ecosystem that improves on it).
func Emit(pkg string, schema *ir.SchemaMap, migration ir.NamedExpr, queries []*ir.InferredQuery) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("// Code generated by sqlgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	emitImports(&buf, queries)

	for _, table := range schema.Order {
		emitEntity(&buf, table, schema.Tables[table])
	}
	for _, q := range queries {
		emitRowType(&buf, q.Row)
	}

	emitMigration(&buf, migration)

	for _, q := range queries {
		emitAccessor(&buf, q)
		if q.Row.EntityTable != "" {
			emitToEntity(&buf, q)
		}
	}

	src := buf.String()
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return []byte(src), fmt.Errorf("emit: gofmt generated source: %w", err)
	}
	return formatted, nil
}

func emitImports(buf *strings.Builder, queries []*ir.InferredQuery) {
	needsSQL := false
	for _, q := range queries {
		if len(q.Inputs) > 0 {
			needsSQL = true
		}
	}

	buf.WriteString("import (\n\t\"context\"\n")
	if needsSQL {
		buf.WriteString("\t\"database/sql\"\n")
	}
	buf.WriteString("\n\t\"github.com/sqlgenhq/sqlg\"\n)\n\n")
}

// goType maps a normalized affinity onto the Go type the emitter uses for
// a struct field or accessor parameter. BLOB nullability is represented by
// a nil slice rather than a pointer, since []byte already carries that
// signal; every other affinity uses a pointer for NULL-able fields per
// spec.md §6 "Nullable inputs accept an optional carrier".
func goType(t ir.SQLiteType, nullable bool) string {
	switch t {
	case ir.TypeText:
		if nullable {
			return "*string"
		}
		return "string"
	case ir.TypeInteger:
		if nullable {
			return "*int64"
		}
		return "int64"
	case ir.TypeReal:
		if nullable {
			return "*float64"
		}
		return "float64"
	case ir.TypeBlob:
		return "[]byte"
	default:
		return "any"
	}
}

func emitEntity(buf *strings.Builder, table string, cols []ir.SchemaColumn) {
	fmt.Fprintf(buf, "type %s struct {\n", ir.PascalCase(table))
	for _, c := range cols {
		fmt.Fprintf(buf, "\t%s %s `db:%s`\n", ir.PascalCase(c.Column), goType(c.Type, c.Nullable()), strconv.Quote(c.Column))
	}
	buf.WriteString("}\n\n")
}

func emitRowType(buf *strings.Builder, row ir.RowType) {
	fmt.Fprintf(buf, "type %s struct {\n", row.GoName)
	for _, o := range row.Outputs {
		fmt.Fprintf(buf, "\t%s %s `db:%s`\n", ir.PascalCase(o.VisibleName), goType(o.Type, o.Nullable), strconv.Quote(o.SQLName()))
	}
	buf.WriteString("}\n\n")
}

func emitMigration(buf *strings.Builder, migration ir.NamedExpr) {
	fmt.Fprintf(buf, "func %s(ctx context.Context, db sqlg.DB) error {\n", migration.Identifier)
	fmt.Fprintf(buf, "\treturn sqlg.ApplyMigration(ctx, db, %s)\n}\n\n", backtickLit(migration.SQLText))
}

func emitAccessor(buf *strings.Builder, q *ir.InferredQuery) {
	params := make([]string, 0, len(q.Inputs))
	args := make([]string, 0, len(q.Inputs))
	seen := make(map[string]int, len(q.Inputs))
	for _, in := range q.Inputs {
		pn := paramName(ir.CamelCase(in.VisibleName), seen)
		params = append(params, fmt.Sprintf("%s %s", pn, goType(in.Type, in.Nullable)))
		args = append(args, fmt.Sprintf("sql.Named(%s, %s)", strconv.Quote(in.SQLName()), pn))
	}
	paramList := paramDecl(params)
	argList := strings.Join(args, ", ")
	rawSQL := backtickLit(q.Expr.SQLText)
	rowName := q.Row.GoName
	ident := q.Expr.Identifier

	switch q.Expr.Kind {
	case ir.KindFirst:
		fmt.Fprintf(buf, "func %s(db sqlg.DB%s) (*%s, error) {\n", ident, paramList, rowName)
		fmt.Fprintf(buf, "\tvar rows []%s\n", rowName)
		fmt.Fprintf(buf, "\tif err := db.Select(&rows, %s%s); err != nil {\n\t\treturn nil, err\n\t}\n", rawSQL, prefixedArgs(argList))
		buf.WriteString("\tswitch len(rows) {\n")
		buf.WriteString("\tcase 0:\n\t\treturn nil, sqlg.ErrRowNotFound\n")
		buf.WriteString("\tcase 1:\n\t\treturn &rows[0], nil\n")
		buf.WriteString("\tdefault:\n\t\treturn nil, sqlg.ErrTooManyRows\n")
		buf.WriteString("\t}\n}\n\n")

	case ir.KindStream:
		fmt.Fprintf(buf, "func %s(db sqlg.DB%s) (func(func(%s) bool), func() error) {\n", ident, paramList, rowName)
		fmt.Fprintf(buf, "\tvar row %s\n", rowName)
		fmt.Fprintf(buf, "\tseq := db.SelectSeq(%s%s)\n", rawSQL, prefixedArgs(argList))
		buf.WriteString("\titer := seq.Iter(&row)\n")
		fmt.Fprintf(buf, "\treturn func(yield func(%s) bool) {\n", rowName)
		buf.WriteString("\t\titer(func(any) bool {\n\t\t\treturn yield(row)\n\t\t})\n")
		buf.WriteString("\t}, seq.Err\n}\n\n")

	default: // ir.KindMany
		fmt.Fprintf(buf, "func %s(db sqlg.DB%s) ([]%s, error) {\n", ident, paramList, rowName)
		fmt.Fprintf(buf, "\tvar rows []%s\n", rowName)
		fmt.Fprintf(buf, "\terr := db.Select(&rows, %s%s)\n", rawSQL, prefixedArgs(argList))
		buf.WriteString("\treturn rows, err\n}\n\n")
	}
}

func emitToEntity(buf *strings.Builder, q *ir.InferredQuery) {
	entity := ir.PascalCase(q.Row.EntityTable)
	fmt.Fprintf(buf, "func (r %s) ToEntity() %s {\n", q.Row.GoName, entity)
	fmt.Fprintf(buf, "\tvar e %s\n", entity)
	for _, o := range q.Row.Outputs {
		field := ir.PascalCase(o.VisibleName)
		fmt.Fprintf(buf, "\te.%s = r.%s\n", field, field)
	}
	buf.WriteString("\treturn e\n}\n\n")
}

// paramName disambiguates Go parameter names that collide after CamelCase:
// a schema-resolved "id" and a hinted "id__INTEGER" both visible-name to
// "id", but a single function signature can't declare the parameter twice.
// The second and later occurrences get a numeric suffix; seen tracks counts
// across one accessor's full input list.
func paramName(base string, seen map[string]int) string {
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s%d", base, n)
	}
	return base
}

func paramDecl(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return ", " + strings.Join(params, ", ")
}

func prefixedArgs(args string) string {
	if args == "" {
		return ""
	}
	return ", " + args
}

// backtickLit renders s as a Go raw string literal, falling back to an
// interpreted literal when s itself contains a backtick (rare in DDL/DML
// text, per spec.md §9's note on the similarly rare semicolon-in-literal
// case).
func backtickLit(s string) string {
	if !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}
