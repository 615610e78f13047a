// Package decl parses the declaration block surface: a Go var(...) block
// marked with a "//sqlgen:schema" comment, each entry assigning a single
// identifier to a single string literal of SQL text. This is the Go-native
// stand-in for the source implementation's `let ident = "sql";` sequence
// (spec.md §4.3, SPEC_FULL.md §0).
package decl

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"strconv"
	"strings"

	rsql "github.com/rqlite/sql"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// marker is the comment text that promotes a var block to a declaration
// block the generator processes. Everything else in the file is ignored by
// the generator but compiles normally.
const marker = "sqlgen:schema"

// ParseFile reads the Go source file at path and returns every Named SQL
// Expression declared in its //sqlgen:schema var block, in declaration
// order.
func ParseFile(path string) ([]ir.NamedExpr, error) {
	return ParseSource(path, nil)
}

// ParseSource parses src (Go source text) as if it were filename, returning
// every Named SQL Expression in its //sqlgen:schema var block. A nil src
// reads filename from disk, matching go/parser.ParseFile's own convention;
// this split exists so tests can exercise the declaration grammar without
// writing temp files.
func ParseSource(filename string, src any) ([]ir.NamedExpr, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("decl: parse %s: %w", filename, err)
	}
	return parseFile(fset, file)
}

func parseFile(fset *token.FileSet, file *ast.File) ([]ir.NamedExpr, error) {
	var exprs []ir.NamedExpr
	for _, d := range file.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR || !hasMarker(gen) {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			entries, err := parseValueSpec(fset, vs)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, entries...)
		}
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("decl: no //sqlgen:schema var block found")
	}
	if err := checkUnique(exprs); err != nil {
		return nil, err
	}
	return exprs, nil
}

func hasMarker(gen *ast.GenDecl) bool {
	if gen.Doc == nil {
		return false
	}
	for _, c := range gen.Doc.List {
		if strings.Contains(c.Text, marker) {
			return true
		}
	}
	return false
}

// parseValueSpec handles one line of the var block, e.g.
// `migrate = "create table ..."`. Every name in the spec must be assigned
// exactly one string literal; anything else is a SyntaxError per spec.md
// §7.
func parseValueSpec(fset *token.FileSet, vs *ast.ValueSpec) ([]ir.NamedExpr, error) {
	if len(vs.Names) != len(vs.Values) {
		return nil, fmt.Errorf("decl: %s: each declaration must assign exactly one string literal", pos(fset, vs.Pos()))
	}

	out := make([]ir.NamedExpr, 0, len(vs.Names))
	for i, name := range vs.Names {
		lit, ok := vs.Values[i].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return nil, fmt.Errorf("decl: %s: %s must be assigned a string literal", pos(fset, vs.Pos()), name.Name)
		}

		text, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, fmt.Errorf("decl: %s: %s: %w", pos(fset, lit.Pos()), name.Name, err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("decl: %s: %s has empty SQL text", pos(fset, vs.Pos()), name.Name)
		}

		stmts, err := parseSQL(text)
		if err != nil {
			return nil, fmt.Errorf("decl: %s: %s: %w", pos(fset, vs.Pos()), name.Name, err)
		}

		out = append(out, ir.NamedExpr{
			Identifier: name.Name,
			SQLText:    text,
			Statements: stmts,
		})
	}
	return out, nil
}

func parseSQL(text string) ([]rsql.Statement, error) {
	p := rsql.NewParser(strings.NewReader(text))
	var stmts []rsql.Statement
	for {
		stmt, err := p.ParseStatement()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sql parse error: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no parsed statements")
	}
	return stmts, nil
}

func checkUnique(exprs []ir.NamedExpr) error {
	seen := make(map[string]bool, len(exprs))
	for _, e := range exprs {
		if seen[e.Identifier] {
			return fmt.Errorf("decl: duplicate identifier %q", e.Identifier)
		}
		seen[e.Identifier] = true
	}
	return nil
}

func pos(fset *token.FileSet, p token.Pos) string {
	return fset.Position(p).String()
}
