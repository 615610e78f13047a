// Command sqlgen runs the compile-time pipeline described in spec.md §2:
// it parses a //sqlgen:schema declaration block out of a Go source file,
// classifies the migration expression, applies its DDL against an
// ephemeral in-memory SQLite database to obtain the authoritative schema,
// infers the input/output types of every query expression, and writes a
// generated .go file of typed entity/row types and accessors.
//
// It is the idiomatic Go stand-in for the source implementation's Rust
// proc-macro (`sql! { ... }`, invoked inside rustc): Go has no equivalent
// compiler hook, so this runs as a `go:generate`-invoked binary instead,
// the same shape as sqlc, stringer, and protoc-gen-go.
package main

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlgenhq/sqlg/internal/oracle"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/classify"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/decl"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/emit"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/infer"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var in, out, pkg string

	cmd := &cobra.Command{
		Use:   "sqlgen",
		Short: "Generate typed SQLite accessors from a //sqlgen:schema declaration block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), in, out, pkg)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Go source file containing the //sqlgen:schema declaration block (required)")
	cmd.Flags().StringVar(&out, "out", "", "output .go file path (required)")
	cmd.Flags().StringVar(&pkg, "pkg", "", "package name for the generated file (defaults to the input file's own package)")
	cobra.CheckErr(cmd.MarkFlagRequired("in"))
	cobra.CheckErr(cmd.MarkFlagRequired("out"))

	return cmd
}

func run(ctx context.Context, in, out, pkg string) error {
	exprs, err := decl.ParseFile(in)
	if err != nil {
		return err
	}

	migrationExpr, queryExprs, err := classify.Partition(exprs)
	if err != nil {
		return err
	}

	o, err := oracle.Open()
	if err != nil {
		return fmt.Errorf("sqlgen: %w", err)
	}
	defer o.Close()

	for _, stmt := range migrationExpr.Statements {
		if err := o.ApplyDDL(stmt.String()); err != nil {
			return fmt.Errorf("sqlgen: %s: %w", migrationExpr.Identifier, err)
		}
	}

	schemaMap, err := schema.Build(migrationExpr.Statements)
	if err != nil {
		return fmt.Errorf("sqlgen: %s: %w", migrationExpr.Identifier, err)
	}

	// Cross-check the folded Schema Model against the Oracle's own
	// introspection of the database it just built; the Oracle remains the
	// arbiter of ground truth (spec.md §4.5).
	oracleRows, err := o.IntrospectSchema()
	if err != nil {
		return fmt.Errorf("sqlgen: cross-checking schema against the oracle: %w", err)
	}
	if err := crossCheckSchema(schemaMap, oracleRows); err != nil {
		return fmt.Errorf("sqlgen: %s: %w", migrationExpr.Identifier, err)
	}

	queries := make([]*ir.InferredQuery, 0, len(queryExprs))
	for _, qe := range queryExprs {
		q, err := infer.Infer(ctx, o, schemaMap, qe)
		if err != nil {
			return fmt.Errorf("sqlgen: %w", err)
		}
		queries = append(queries, q)
	}

	if pkg == "" {
		pkg = packageNameOf(in)
	}

	src, err := emit.Emit(pkg, schemaMap, migrationExpr, queries)
	if err != nil {
		return fmt.Errorf("sqlgen: %w", err)
	}

	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("sqlgen: write %s: %w", out, err)
	}
	return nil
}

// crossCheckSchema diffs the folded Schema Model against the Oracle's own
// pragma_table_info view of the database it just built from the same DDL.
// The two are built by entirely different code paths (schema.Build folds
// the parsed AST statement-by-statement; the Oracle actually executes the
// DDL and asks SQLite what exists), so any divergence means the Schema
// Model Builder folded a statement SQLite itself disagrees with — a bug in
// this generator, not in the user's migration. The Oracle is the arbiter
// (spec.md §4.5): any mismatch is reported in terms of what the Oracle saw.
func crossCheckSchema(m *ir.SchemaMap, oracleRows []oracle.SchemaRow) error {
	oracleCols := make(map[string]map[string]oracle.SchemaRow, len(oracleRows))
	for _, row := range oracleRows {
		cols, ok := oracleCols[row.TableName]
		if !ok {
			cols = make(map[string]oracle.SchemaRow)
			oracleCols[row.TableName] = cols
		}
		cols[row.ColumnName] = row
	}

	for _, table := range m.Order {
		oracleTable, ok := oracleCols[table]
		if !ok {
			return fmt.Errorf("schema model has table %q the oracle does not", table)
		}
		for _, col := range m.Tables[table] {
			row, ok := oracleTable[col.Column]
			if !ok {
				return fmt.Errorf("schema model has column %s.%s the oracle does not", table, col.Column)
			}
			if got, want := ir.NormalizeType(row.ColumnType), col.Type; got != want {
				return fmt.Errorf("column %s.%s: schema model says type %s, oracle says %s", table, col.Column, want, got)
			}
			if row.NotNull != col.NotNull {
				return fmt.Errorf("column %s.%s: schema model says not_null=%v, oracle says %v", table, col.Column, col.NotNull, row.NotNull)
			}
			if row.PK != col.PK {
				return fmt.Errorf("column %s.%s: schema model says pk=%v, oracle says %v", table, col.Column, col.PK, row.PK)
			}
		}
		if len(oracleTable) != len(m.Tables[table]) {
			return fmt.Errorf("table %q: schema model has %d columns, oracle has %d", table, len(m.Tables[table]), len(oracleTable))
		}
	}

	if len(oracleCols) != len(m.Order) {
		return fmt.Errorf("oracle knows %d tables, schema model folded %d", len(oracleCols), len(m.Order))
	}

	return nil
}

// packageNameOf reads only the package clause of the input file, so a
// malformed declaration block elsewhere in the file has already failed
// decl.ParseFile before this runs.
func packageNameOf(path string) string {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly)
	if err != nil || f.Name == nil {
		return "main"
	}
	return f.Name.Name
}
