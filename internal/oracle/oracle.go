// Package oracle implements the Ephemeral Schema Oracle: a live, in-memory
// SQLite connection used purely for introspection during code generation.
// It executes the migration expression's DDL, then answers "what columns
// would this prepared statement produce" and "what named bind parameters
// does it declare" for every query expression.
//
// The source implementation answers these questions with raw sqlite3 C-API
// calls (sqlite3_bind_parameter_name, sqlite3_column_origin_name,
// sqlite3_column_table_name) that mattn/go-sqlite3 does not expose through
// database/sql. This Oracle gets the same answers a different way: bind
// parameter names and source-table provenance are walked directly out of
// the already-parsed statement AST, and output column names come from
// sql.Rows.Columns(), read before the first Next() so the oracle never
// materializes row data, only shape.
package oracle

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	rsql "github.com/rqlite/sql"
)

// Oracle owns one :memory: sqlite3 connection for the lifetime of a single
// code-generation run. Callers must Close it on every exit path.
type Oracle struct {
	db *sqlx.DB
}

// Open creates a fresh, empty in-memory SQLite database and enables
// foreign-key enforcement so that DDL referencing a missing table surfaces
// as an error during generation rather than being silently accepted.
func Open() (*Oracle, error) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("oracle: open :memory: database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("oracle: enable foreign keys: %w", err)
	}
	return &Oracle{db: db}, nil
}

func (o *Oracle) Close() error {
	return o.db.Close()
}

// ApplyDDL executes one DDL statement's text against the Oracle's
// connection. The caller is expected to attribute any resulting error to
// the migration expression's span.
func (o *Oracle) ApplyDDL(text string) error {
	if _, err := o.db.Exec(text); err != nil {
		return fmt.Errorf("oracle: apply DDL %q: %w", text, err)
	}
	return nil
}

// SchemaRow is the flattened (table, column, type, not_null, pk) view the
// spec calls IntrospectSchema, built from sqlite_master joined with
// pragma_table_info, in the same statement shape the source macro's
// schema(db) function uses.
type SchemaRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
	ColumnType string `db:"column_type"`
	NotNull    bool   `db:"not_null"`
	PK         bool   `db:"pk"`
}

// IntrospectSchema returns every user-table column the Oracle currently
// knows about, ordered by (table_name, ordinal), excluding sqlite_*
// internal tables.
func (o *Oracle) IntrospectSchema() ([]SchemaRow, error) {
	const q = `
		select
			m.tbl_name as table_name,
			p.name as column_name,
			p.type as column_type,
			p."notnull" as not_null,
			p.pk as pk
		from sqlite_master m
		join pragma_table_info(m.tbl_name) p
		where m.type = 'table' and m.tbl_name not like 'sqlite_%'
		order by m.tbl_name, p.cid
	`
	var rows []SchemaRow
	if err := o.db.Select(&rows, q); err != nil {
		return nil, fmt.Errorf("oracle: introspect schema: %w", err)
	}
	return rows, nil
}

// PreparedQuery is what the Oracle reports about one query expression's
// single data statement: its bind-parameter names in declaration order and
// its output column shape.
type PreparedQuery struct {
	BindParameterNames []string
	ResultColumnNames  []string
	// ResultOriginColumnNames[i] is the unaliased source column name for
	// output i, or "" when the output is computed (not a plain column
	// reference).
	ResultOriginColumnNames []string
	// ResultTableNames[i] is the source table of output i, or "" when
	// computed or ambiguous.
	ResultTableNames []string
}

// Prepare answers the Oracle's two core questions for stmt without
// stepping it: what parameters does it bind, and what columns will it
// produce. For SELECT the column shape comes from actually issuing the
// query against the (already DDL-applied) in-memory database and reading
// sql.Rows.Columns() before the first Next() — so wildcard expansion is
// handled by SQLite itself rather than re-implemented here. For INSERT/
// UPDATE/DELETE with RETURNING, a RETURNING query is issued the same way
// against a savepoint, which is rolled back, so generation has no
// observable effect on this Oracle's persistent state between questions.
func (o *Oracle) Prepare(ctx context.Context, stmt rsql.Statement, rawSQL string) (*PreparedQuery, error) {
	names := bindParameterNames(stmt)

	resultCols, originCols, tableCols, err := o.resultColumns(ctx, stmt, rawSQL)
	if err != nil {
		return nil, err
	}

	return &PreparedQuery{
		BindParameterNames:      names,
		ResultColumnNames:       resultCols,
		ResultOriginColumnNames: originCols,
		ResultTableNames:        tableCols,
	}, nil
}

// resultColumns runs the statement inside a savepoint so that any side
// effects it has (INSERT/UPDATE/DELETE) are rolled back once its column
// shape has been read — the Oracle must still be able to answer the next
// query expression against the same pristine post-DDL schema state.
func (o *Oracle) resultColumns(ctx context.Context, stmt rsql.Statement, rawSQL string) (names, origin, table []string, err error) {
	tx, err := o.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("oracle: begin introspection savepoint: %w", err)
	}
	defer tx.Rollback()

	args := placeholderArgs(stmt)
	rows, err := tx.QueryContext(ctx, rawSQL, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("oracle: prepare %q: %w", rawSQL, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("oracle: read result columns: %w", err)
	}

	colTypes, _ := rows.ColumnTypes()
	origin = make([]string, len(cols))
	table = make([]string, len(cols))
	for i, ct := range colTypes {
		// database/sql's ColumnType does not expose sqlite3's origin/table
		// name pair directly; callers resolve provenance themselves against
		// the Schema Map (see infer.resolveToken) and only fall back to this
		// name when the alias equals the underlying column name, the common
		// case.
		origin[i] = ct.Name()
		table[i] = ""
	}

	return cols, origin, table, nil
}

// placeholderArgs supplies NULL for every named bind parameter so a
// statement with NOT NULL columns but no supplied values can still be
// introspected for its column shape; the Oracle never commits this
// execution. Parameters are bound by name (sql.Named) rather than
// position, since the generator's named-parameter convention (:name,
// @name, $name) is what callers actually write.
func placeholderArgs(stmt rsql.Statement) []any {
	names := bindParameterNames(stmt)
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = sql.Named(n, nil)
	}
	return args
}
