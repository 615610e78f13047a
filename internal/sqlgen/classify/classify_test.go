package classify_test

import (
	"io"
	"strings"
	"testing"

	rsql "github.com/rqlite/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/classify"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

func namedExpr(t *testing.T, identifier, sql string) ir.NamedExpr {
	t.Helper()
	parser := rsql.NewParser(strings.NewReader(sql))
	var stmts []rsql.Statement
	for {
		stmt, err := parser.ParseStatement()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		stmts = append(stmts, stmt)
	}
	require.NotEmpty(t, stmts)
	return ir.NamedExpr{Identifier: identifier, SQLText: sql, Statements: stmts}
}

func TestPartition_SingleMigrationAndQueries(t *testing.T) {
	exprs := []ir.NamedExpr{
		namedExpr(t, "migrate", `create table Row (id integer primary key, txt text);`),
		namedExpr(t, "insertRowReturning", `insert into Row (txt) values (:txt) returning *;`),
		namedExpr(t, "allRows", `select * from Row;`),
	}

	migration, queries, err := classify.Partition(exprs)
	require.NoError(t, err)
	assert.Equal(t, "migrate", migration.Identifier)
	require.Len(t, queries, 2)
	assert.Equal(t, "insertRowReturning", queries[0].Identifier)
	assert.Equal(t, "allRows", queries[1].Identifier)
}

func TestPartition_NoMigrationExpression(t *testing.T) {
	exprs := []ir.NamedExpr{
		namedExpr(t, "allRows", `select * from Row;`),
	}

	_, _, err := classify.Partition(exprs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migration expression")
}

func TestPartition_MultipleMigrationExpressions(t *testing.T) {
	exprs := []ir.NamedExpr{
		namedExpr(t, "migrate", `create table A (id integer primary key);`),
		namedExpr(t, "migrateToo", `create table B (id integer primary key);`),
	}

	_, _, err := classify.Partition(exprs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple migration expressions")
}

func TestPartition_MixedDDLAndAdminIsStillMigration(t *testing.T) {
	exprs := []ir.NamedExpr{
		namedExpr(t, "migrate", `
			create table Row (id integer primary key, txt text);
			create index idx_row_txt on Row (txt);
			pragma foreign_keys = on;
		`),
		namedExpr(t, "allRows", `select * from Row;`),
	}

	migration, queries, err := classify.Partition(exprs)
	require.NoError(t, err)
	assert.Equal(t, "migrate", migration.Identifier)
	assert.Len(t, queries, 1)
}
