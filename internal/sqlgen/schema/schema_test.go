package schema_test

import (
	"io"
	"strings"
	"testing"

	rsql "github.com/rqlite/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/schema"
)

func parse(t *testing.T, sql string) []rsql.Statement {
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
	require.NotEmpty(t, stmts, "expected at least one parsed statement from %q", sql)
	return stmts
}

func TestBuild_CreateTable(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			bio TEXT
		);
	`))
	require.NoError(t, err)

	cols := m.ColumnsOf("users")
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Column)
	assert.True(t, cols[0].PK)
	assert.False(t, cols[0].Nullable())

	assert.Equal(t, "name", cols[1].Column)
	assert.True(t, cols[1].NotNull)
	assert.False(t, cols[1].Nullable())

	assert.Equal(t, "bio", cols[2].Column)
	assert.False(t, cols[2].NotNull)
	assert.True(t, cols[2].Nullable())

	assert.Equal(t, []string{"users"}, m.Order)
}

func TestBuild_AddAndDropColumn(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE posts (id INTEGER PRIMARY KEY);
		ALTER TABLE posts ADD COLUMN title TEXT NOT NULL;
		ALTER TABLE posts ADD COLUMN draft INTEGER;
		ALTER TABLE posts DROP COLUMN draft;
	`))
	require.NoError(t, err)

	cols := m.ColumnsOf("posts")
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Column)
	assert.Equal(t, "title", cols[1].Column)
	assert.True(t, cols[1].NotNull)
	assert.Equal(t, ir.TypeText, cols[1].Type)
}

func TestBuild_RenameColumnMovesToEnd(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE items (id INTEGER PRIMARY KEY, sku TEXT, label TEXT);
		ALTER TABLE items RENAME COLUMN sku TO code;
	`))
	require.NoError(t, err)

	cols := m.ColumnsOf("items")
	require.Len(t, cols, 3)
	// sku renamed to code, and moved to the end of the column list -- an
	// intentionally preserved ordering quirk.
	assert.Equal(t, []string{"id", "label", "code"}, columnNames(cols))
}

func TestBuild_RenameTable(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE old_name (id INTEGER PRIMARY KEY);
		ALTER TABLE old_name RENAME TO new_name;
	`))
	require.NoError(t, err)

	assert.Nil(t, m.ColumnsOf("old_name"))
	assert.Len(t, m.ColumnsOf("new_name"), 1)
	assert.Equal(t, []string{"new_name"}, m.Order)
	assert.Equal(t, "new_name", m.ColumnsOf("new_name")[0].Table)
}

func TestBuild_DropTable(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE a (id INTEGER PRIMARY KEY);
		CREATE TABLE b (id INTEGER PRIMARY KEY);
		DROP TABLE a;
	`))
	require.NoError(t, err)

	assert.Nil(t, m.ColumnsOf("a"))
	assert.Len(t, m.ColumnsOf("b"), 1)
	assert.Equal(t, []string{"b"}, m.Order)
}

func TestBuild_ForeignKeyColumn(t *testing.T) {
	m, err := schema.Build(parse(t, `
		CREATE TABLE authors (id INTEGER PRIMARY KEY);
		CREATE TABLE books (
			id INTEGER PRIMARY KEY,
			author_id INTEGER REFERENCES authors(id)
		);
	`))
	require.NoError(t, err)

	cols := m.ColumnsOf("books")
	require.Len(t, cols, 2)
	assert.Equal(t, "authors", cols[1].ForeignKeyTable)
}

func columnNames(cols []ir.SchemaColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Column
	}
	return names
}
