// Package infer implements the Statement Type Inferencer (spec.md §4.7):
// for each query expression it combines the Ephemeral Schema Oracle's
// answers with the folded Schema Map and the Hint Parser to produce
// ordered typed inputs, ordered typed outputs, the statement's function
// kind, and (when applicable) its convertible entity table.
package infer

import (
	"context"
	"fmt"
	"strings"

	rsql "github.com/rqlite/sql"

	"github.com/sqlgenhq/sqlg/internal/astutil"
	"github.com/sqlgenhq/sqlg/internal/oracle"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/hints"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// Infer resolves one classified query expression against o (already
// holding the migration expression's DDL) and schema (the Schema Model
// Builder's folded representation of that same DDL).
func Infer(ctx context.Context, o *oracle.Oracle, schema *ir.SchemaMap, expr ir.NamedExpr) (*ir.InferredQuery, error) {
	stmt := expr.Statements[len(expr.Statements)-1]
	rawSQL := stmt.String()

	prepared, err := o.Prepare(ctx, stmt, rawSQL)
	if err != nil {
		return nil, fmt.Errorf("infer: %s: %w", expr.Identifier, err)
	}

	tables := tableSet(stmt, schema)

	inputs, err := resolveAll(expr.Identifier, "bind parameter", prepared.BindParameterNames, tables, schema)
	if err != nil {
		return nil, err
	}

	outputs, err := resolveAll(expr.Identifier, "output column", prepared.ResultColumnNames, tables, schema)
	if err != nil {
		return nil, err
	}

	row := ir.RowType{
		GoName:      ir.PascalCase(expr.Identifier),
		Outputs:     outputs,
		EntityTable: entityTable(stmt, outputs, schema),
	}

	return &ir.InferredQuery{
		Expr:   ir.QueryExpr{NamedExpr: expr, Kind: functionKind(expr.Identifier)},
		Inputs: inputs,
		Row:    row,
	}, nil
}

// functionKind dispatches on the identifier suffix per spec.md §4.7.
func functionKind(identifier string) ir.FunctionKind {
	switch {
	case strings.HasSuffix(identifier, "_stream"):
		return ir.KindStream
	case strings.HasSuffix(identifier, "_first"):
		return ir.KindFirst
	default:
		return ir.KindMany
	}
}

func resolveAll(identifier, what string, names []string, tables []string, schema *ir.SchemaMap) ([]ir.TypedToken, error) {
	tokens := make([]ir.TypedToken, 0, len(names))
	for _, name := range names {
		tok, err := resolveToken(name, tables, schema)
		if err != nil {
			return nil, fmt.Errorf("infer: %s: %s %q: %w", identifier, what, name, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// resolveToken classifies name as a Type-Hinted Token (authoritative,
// never merged with a Schema Column) or resolves it against the visible
// Schema Columns.
func resolveToken(name string, tables []string, schema *ir.SchemaMap) (ir.TypedToken, error) {
	if hints.IsHinted(name) {
		h, err := hints.Parse(name)
		if err != nil {
			return ir.TypedToken{}, err
		}
		return ir.TypedToken{
			Origin:      ir.FromHint,
			VisibleName: h.Name,
			RawName:     name,
			Type:        h.Type,
			Nullable:    h.Nullable,
		}, nil
	}

	col, ok := schema.FindColumn(tables, name)
	if !ok {
		return ir.TypedToken{}, fmt.Errorf("cannot resolve against visible tables %v", tables)
	}
	return ir.TypedToken{
		Origin:      ir.FromSchema,
		VisibleName: name,
		Type:        col.Type,
		Nullable:    col.Nullable(),
		Column:      col,
	}, nil
}

// tableSet returns the set of tables visible to name resolution within one
// statement: every identifier astutil.Idents walks out of stmt that names a
// table in the Schema Map (this also catches FROM/JOIN/INTO/UPDATE targets,
// since those are exactly the *rsql.Ident nodes the parser attaches to a
// table reference), plus (per SPEC_FULL.md §3.2) the referenced table of any
// foreign key declared on a column of an already-visible table, expanded to
// a fixed point.
func tableSet(stmt rsql.Statement, schema *ir.SchemaMap) []string {
	seen := map[string]bool{}
	var order []string
	add := func(name string) {
		if name == "" {
			return
		}
		for _, t := range schema.Order {
			if strings.EqualFold(t, name) {
				name = t
				break
			}
		}
		if !schema.HasTable(name) || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	for _, id := range astutil.Idents(stmt) {
		add(id)
	}

	for changed := true; changed; {
		changed = false
		for _, t := range order {
			for _, c := range schema.Tables[t] {
				if c.ForeignKeyTable != "" && !seen[c.ForeignKeyTable] {
					add(c.ForeignKeyTable)
					changed = true
				}
			}
		}
	}

	return order
}

// writeTarget reports the single table an INSERT/UPDATE/DELETE statement
// targets, the candidate for entity-type conversion (spec.md §4.7
// "Entity-type conversion"). rqlite/sql's parser attaches the write target
// as the first *rsql.Ident it builds for these three statement kinds (the
// table reference precedes the column list, the SET clause, and the WHERE
// clause in every one of their grammars), so the first identifier
// astutil.Idents walks out of stmt that names a known table is the target.
// Gating on the statement's own type, rather than trusting any identifier
// anywhere in the tree, keeps a SELECT (which has no write target) from
// ever reaching this function with a false match.
func writeTarget(stmt rsql.Statement, schema *ir.SchemaMap) string {
	switch stmt.(type) {
	case *rsql.InsertStatement, *rsql.UpdateStatement, *rsql.DeleteStatement:
	default:
		return ""
	}
	for _, id := range astutil.Idents(stmt) {
		for _, t := range schema.Order {
			if strings.EqualFold(t, id) {
				return t
			}
		}
	}
	return ""
}

// entityTable reports the table a generated row type converts to: the
// statement's single write target, when every output's visible name is
// also a column of that table. Hinted outputs participate in the subset
// check by name like any other output; a computed expression aliased to a
// name that happens to match a column still counts, matching the source
// behavior's alias-based check.
func entityTable(stmt rsql.Statement, outputs []ir.TypedToken, schema *ir.SchemaMap) string {
	if len(outputs) == 0 {
		return ""
	}
	target := writeTarget(stmt, schema)
	if target == "" {
		return ""
	}

	cols := schema.Tables[target]
	if len(cols) == 0 {
		return ""
	}
	colSet := make(map[string]bool, len(cols))
	for _, c := range cols {
		colSet[c.Column] = true
	}
	for _, o := range outputs {
		if !colSet[o.VisibleName] {
			return ""
		}
	}
	return target
}
