// Package classify partitions named SQL expressions into exactly one
// migration expression (every statement DDL/admin) and zero or more query
// expressions (at least one data statement), per spec.md §4.4.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	rsql "github.com/rqlite/sql"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// ddlText matches the session-level/admin statement shapes spec.md §4.4
// names that this package has no confirmed rqlite/sql AST type for in the
// reference corpus (DROP INDEX/VIEW/TRIGGER, PRAGMA, SAVEPOINT/RELEASE,
// transaction control, EXPLAIN, SHOW, USE, comments). Statement kinds with
// a confirmed AST type are classified by type switch below instead, never
// by text, so a parser upgrade only narrows this pattern rather than
// silently breaking classification.
var ddlText = regexp.MustCompile(`(?is)^\s*(DROP\s+(INDEX|VIEW|TRIGGER)\b|PRAGMA\b|SAVEPOINT\b|RELEASE\b|BEGIN\b|COMMIT\b|END\b|ROLLBACK\b|EXPLAIN\b|SHOW\b|USE\b|--)`)

// IsDDL reports whether stmt is a DDL/admin statement: CREATE/ALTER/DROP of
// tables/views/indexes/triggers, PRAGMA, SAVEPOINT/RELEASE, transaction
// control, EXPLAIN, or a comment.
func IsDDL(stmt rsql.Statement) bool {
	switch stmt.(type) {
	case *rsql.CreateTableStatement,
		*rsql.AlterTableStatement,
		*rsql.DropTableStatement,
		*rsql.CreateIndexStatement,
		*rsql.CreateViewStatement,
		*rsql.CreateTriggerStatement:
		return true
	}
	return ddlText.MatchString(stmt.String())
}

func allDDL(stmts []rsql.Statement) bool {
	for _, s := range stmts {
		if !IsDDL(s) {
			return false
		}
	}
	return true
}

// Partition splits exprs into the single migration expression and the
// remaining query expressions, preserving declaration order within
// queries. Exactly one migration expression is required.
func Partition(exprs []ir.NamedExpr) (migration ir.NamedExpr, queries []ir.NamedExpr, err error) {
	var migrations []ir.NamedExpr
	for _, e := range exprs {
		if len(e.Statements) == 0 {
			return ir.NamedExpr{}, nil, fmt.Errorf("classify: %s: named expression has no parsed statements", e.Identifier)
		}
		if allDDL(e.Statements) {
			migrations = append(migrations, e)
		} else {
			queries = append(queries, e)
		}
	}

	switch len(migrations) {
	case 0:
		return ir.NamedExpr{}, nil, fmt.Errorf(
			`classify: no migration expression found; exactly one named expression must contain only DDL/admin statements, e.g. var migrate = `+"`"+`create table ...`+"`",
		)
	case 1:
		return migrations[0], queries, nil
	default:
		names := make([]string, len(migrations))
		for i, m := range migrations {
			names[i] = m.Identifier
		}
		return ir.NamedExpr{}, nil, fmt.Errorf("classify: multiple migration expressions found: %s", strings.Join(names, ", "))
	}
}
