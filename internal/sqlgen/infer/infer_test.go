package infer_test

import (
	"context"
	"io"
	"strings"
	"testing"

	rsql "github.com/rqlite/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/oracle"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/infer"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/schema"
)

func parseOne(t *testing.T, sql string) []rsql.Statement {
	t.Helper()
	p := rsql.NewParser(strings.NewReader(sql))
	var stmts []rsql.Statement
	for {
		stmt, err := p.ParseStatement()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		stmts = append(stmts, stmt)
	}
	require.NotEmpty(t, stmts)
	return stmts
}

func setup(t *testing.T, ddl string) (*oracle.Oracle, *ir.SchemaMap) {
	t.Helper()
	stmts := parseOne(t, ddl)

	o, err := oracle.Open()
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })

	for _, s := range stmts {
		require.NoError(t, o.ApplyDDL(s.String()))
	}

	m, err := schema.Build(stmts)
	require.NoError(t, err)
	return o, m
}

func TestInfer_RoundTripInsertReturning(t *testing.T) {
	o, m := setup(t, `create table Row (id integer primary key, txt text);`)

	expr := ir.NamedExpr{
		Identifier: "insertRowReturning",
		SQLText:    `insert into Row (txt) values (:txt) returning *`,
		Statements: parseOne(t, `insert into Row (txt) values (:txt) returning *;`),
	}

	q, err := infer.Infer(context.Background(), o, m, expr)
	require.NoError(t, err)

	require.Len(t, q.Inputs, 1)
	assert.Equal(t, "txt", q.Inputs[0].VisibleName)
	assert.Equal(t, ir.TypeText, q.Inputs[0].Type)
	assert.True(t, q.Inputs[0].Nullable)

	require.Len(t, q.Row.Outputs, 2)
	assert.Equal(t, "InsertRowReturning", q.Row.GoName)
	assert.Equal(t, "Row", q.Row.EntityTable)
	assert.Equal(t, ir.KindMany, q.Expr.Kind)
}

func TestInfer_FunctionKindBySuffix(t *testing.T) {
	o, m := setup(t, `create table Row (id integer primary key, txt text);`)

	cases := []struct {
		identifier string
		kind       ir.FunctionKind
	}{
		{"allRows", ir.KindMany},
		{"oneRow_first", ir.KindFirst},
		{"rowStream_stream", ir.KindStream},
	}
	for _, c := range cases {
		expr := ir.NamedExpr{
			Identifier: c.identifier,
			SQLText:    `select * from Row`,
			Statements: parseOne(t, `select * from Row;`),
		}
		q, err := infer.Infer(context.Background(), o, m, expr)
		require.NoError(t, err)
		assert.Equal(t, c.kind, q.Expr.Kind, c.identifier)
	}
}

func TestInfer_TypeHintedJoinAliases(t *testing.T) {
	o, m := setup(t, `
		create table User (id integer primary key, name text not null);
		create table Friendship (id integer primary key, user1_id integer, user2_id integer);
	`)

	sqlText := `select u1.name as friend1_name__TEXT, u2.name as friend2_name__TEXT
		from Friendship, User u1, User u2
		where Friendship.user1_id = u1.id and Friendship.user2_id = u2.id
		and Friendship.id = :friendship_id__INTEGER`

	expr := ir.NamedExpr{
		Identifier: "friendNames",
		SQLText:    sqlText,
		Statements: parseOne(t, sqlText+";"),
	}

	q, err := infer.Infer(context.Background(), o, m, expr)
	require.NoError(t, err)

	require.Len(t, q.Inputs, 1)
	assert.Equal(t, "friendship_id", q.Inputs[0].VisibleName)
	assert.Equal(t, ir.TypeInteger, q.Inputs[0].Type)
	assert.False(t, q.Inputs[0].Nullable)

	require.Len(t, q.Row.Outputs, 2)
	for _, out := range q.Row.Outputs {
		assert.Equal(t, ir.TypeText, out.Type)
		assert.False(t, out.Nullable)
	}
}

// TestInfer_MixedHintedAndSchemaBindParams exercises spec.md §8 scenario 6:
// a statement mixing a schema-resolved bind parameter with type-hinted ones,
// including a hint that shares its base name with a real column.
func TestInfer_MixedHintedAndSchemaBindParams(t *testing.T) {
	o, m := setup(t, `create table Row (id integer primary key, txt text not null);`)

	sqlText := `select * from Row where id = :id and txt = :id__INTEGER and 1 = :ff__TEXT`

	expr := ir.NamedExpr{
		Identifier: "mixedParams",
		SQLText:    sqlText,
		Statements: parseOne(t, sqlText+";"),
	}

	q, err := infer.Infer(context.Background(), o, m, expr)
	require.NoError(t, err)

	require.Len(t, q.Inputs, 3)

	assert.Equal(t, ir.FromSchema, q.Inputs[0].Origin)
	assert.Equal(t, "id", q.Inputs[0].VisibleName)
	assert.Equal(t, "id", q.Inputs[0].SQLName())
	assert.Equal(t, ir.TypeInteger, q.Inputs[0].Type)

	assert.Equal(t, ir.FromHint, q.Inputs[1].Origin)
	assert.Equal(t, "id", q.Inputs[1].VisibleName)
	assert.Equal(t, "id__INTEGER", q.Inputs[1].SQLName())
	assert.Equal(t, ir.TypeInteger, q.Inputs[1].Type)

	assert.Equal(t, ir.FromHint, q.Inputs[2].Origin)
	assert.Equal(t, "ff", q.Inputs[2].VisibleName)
	assert.Equal(t, "ff__TEXT", q.Inputs[2].SQLName())
	assert.Equal(t, ir.TypeText, q.Inputs[2].Type)
}

func TestInfer_UnresolvedBindParameterIsError(t *testing.T) {
	o, m := setup(t, `create table Row (id integer primary key, txt text);`)

	expr := ir.NamedExpr{
		Identifier: "badQuery",
		SQLText:    `select * from Row where id = :missing_column`,
		Statements: parseOne(t, `select * from Row where id = :missing_column;`),
	}

	_, err := infer.Infer(context.Background(), o, m, expr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_column")
}
