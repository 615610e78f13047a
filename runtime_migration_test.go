package sqlg_test

import (
	"context"
	"testing"

	"github.com/sqlgenhq/sqlg"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigration_Idempotent(t *testing.T) {
	t.Parallel()
	db, err := sqlg.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	migration := `
		create table Row (id integer primary key, txt text);
		create index idx_row_txt on Row(txt);
	`

	require.NoError(t, sqlg.ApplyMigration(context.Background(), db, migration))
	require.NoError(t, sqlg.ApplyMigration(context.Background(), db, migration))

	var tableCount int
	require.NoError(t, db.Get(&tableCount, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'Row'`))
	assert.Equal(t, 1, tableCount)

	var bookkeepingCount int
	require.NoError(t, db.Get(&bookkeepingCount, `SELECT COUNT(*) FROM __migrations__`))
	assert.Equal(t, 2, bookkeepingCount)
}

func TestApplyMigration_AppliesNewStatementsOnly(t *testing.T) {
	t.Parallel()
	db, err := sqlg.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, sqlg.ApplyMigration(context.Background(), db, `create table Row (id integer primary key);`))
	require.NoError(t, sqlg.ApplyMigration(context.Background(), db, `
		create table Row (id integer primary key);
		alter table Row add column txt text;
	`))

	var columnCount int
	require.NoError(t, db.Get(&columnCount, `SELECT COUNT(*) FROM pragma_table_info('Row')`))
	assert.Equal(t, 2, columnCount)
}
