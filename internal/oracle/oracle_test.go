package oracle_test

import (
	"context"
	"strings"
	"testing"

	rsql "github.com/rqlite/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/oracle"
)

func parseStatement(t *testing.T, sql string) rsql.Statement {
	t.Helper()
	stmt, err := rsql.NewParser(strings.NewReader(sql)).ParseStatement()
	require.NoError(t, err, sql)
	return stmt
}

func TestIntrospectSchema(t *testing.T) {
	o, err := oracle.Open()
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.ApplyDDL(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		bio TEXT
	)`))

	rows, err := o.IntrospectSchema()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "users", rows[0].TableName)
	assert.Equal(t, "id", rows[0].ColumnName)
	assert.True(t, rows[0].PK)

	assert.Equal(t, "name", rows[1].ColumnName)
	assert.True(t, rows[1].NotNull)

	assert.Equal(t, "bio", rows[2].ColumnName)
	assert.False(t, rows[2].NotNull)
}

func TestIntrospectSchema_IgnoresInternalTables(t *testing.T) {
	o, err := oracle.Open()
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.ApplyDDL(`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`))

	rows, err := o.IntrospectSchema()
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotContains(t, r.TableName, "sqlite_")
	}
}

func TestPrepare_SelectColumnShape(t *testing.T) {
	o, err := oracle.Open()
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.ApplyDDL(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`))

	rawSQL := `SELECT id, name FROM users WHERE id = :id`
	prepared, err := o.Prepare(context.Background(), parseStatement(t, rawSQL), rawSQL)
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, prepared.BindParameterNames)
	assert.Equal(t, []string{"id", "name"}, prepared.ResultColumnNames)
}

func TestPrepare_LeavesSchemaUntouchedAcrossCalls(t *testing.T) {
	o, err := oracle.Open()
	require.NoError(t, err)
	defer o.Close()

	require.NoError(t, o.ApplyDDL(`CREATE TABLE counters (id INTEGER PRIMARY KEY, n INTEGER NOT NULL)`))

	rawSQL := `UPDATE counters SET n = n + 1 WHERE id = :id RETURNING n`
	_, err = o.Prepare(context.Background(), parseStatement(t, rawSQL), rawSQL)
	require.NoError(t, err)

	rows, err := o.IntrospectSchema()
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
