package astutil_test

import (
	"io"
	"strings"
	"testing"

	rsql "github.com/rqlite/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/astutil"
)

func parseOne(t *testing.T, sql string) rsql.Statement {
	t.Helper()
	p := rsql.NewParser(strings.NewReader(sql))
	stmt, err := p.ParseStatement()
	require.NoError(t, err, sql)
	_, err = p.ParseStatement()
	require.ErrorIs(t, err, io.EOF)
	return stmt
}

func TestIdents_SelectWithJoinAliases(t *testing.T) {
	stmt := parseOne(t, `select u1.name, u2.name from Friendship, User u1, User u2 where Friendship.id = :id`)
	names := astutil.Idents(stmt)
	assert.Contains(t, names, "Friendship")
	assert.Contains(t, names, "User")
	assert.Contains(t, names, "u1")
	assert.Contains(t, names, "u2")
}

func TestIdents_InsertTarget(t *testing.T) {
	stmt := parseOne(t, `insert into Thing (label, count) values (:label, :count)`)
	names := astutil.Idents(stmt)
	require.NotEmpty(t, names)
	assert.Equal(t, "Thing", names[0])
}

func TestBindParameterNames_DedupedInOrder(t *testing.T) {
	stmt := parseOne(t, `select * from Row where id = :id and txt = :id__INTEGER and 1 = :ff__TEXT`)
	names := astutil.BindParameterNames(stmt)
	assert.Equal(t, []string{"id", "id__INTEGER", "ff__TEXT"}, names)
}

func TestBindParameterNames_RepeatedReferenceBindsOnce(t *testing.T) {
	stmt := parseOne(t, `update Row set txt = :txt where id = :id and id = :id`)
	names := astutil.BindParameterNames(stmt)
	assert.ElementsMatch(t, []string{"txt", "id"}, names)
	assert.Len(t, names, 2)
}

func TestBindParameterNames_NoParameters(t *testing.T) {
	stmt := parseOne(t, `select * from Row`)
	assert.Empty(t, astutil.BindParameterNames(stmt))
}
