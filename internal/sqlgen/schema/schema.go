// Package schema folds the migration expression's DDL statements into the
// canonical Schema Map: an ordered table -> columns model the emitter uses
// for entity field order and the inferencer uses for name resolution.
//
// The Ephemeral Schema Oracle remains the arbiter of ground truth (it is
// what actually executes the DDL and is re-queried after the fact); this
// builder is the emitter's own representation of that schema, folded
// statement-by-statement so it can reproduce the RENAME COLUMN
// move-to-end ordering quirk the Oracle's own pragma_table_info view would
// not show on its own.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	rsql "github.com/rqlite/sql"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// Build folds every statement of the migration expression's statement list,
// in order, into a Schema Map.
func Build(statements []rsql.Statement) (*ir.SchemaMap, error) {
	m := ir.NewSchemaMap()
	for _, stmt := range statements {
		if err := foldStatement(m, stmt); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func foldStatement(m *ir.SchemaMap, stmt rsql.Statement) error {
	switch s := stmt.(type) {
	case *rsql.CreateTableStatement:
		return foldCreateTable(m, s)
	case *rsql.AlterTableStatement:
		return foldAlterTable(m, s)
	case *rsql.DropTableStatement:
		return foldDropTable(m, s)
	default:
		// CREATE INDEX/VIEW/TRIGGER, PRAGMA, transaction control, etc. have
		// no effect on the schema model.
		return nil
	}
}

func foldCreateTable(m *ir.SchemaMap, stmt *rsql.CreateTableStatement) error {
	tableName := stmt.Name.Name.String()
	if tableName == "" {
		return fmt.Errorf("schema: CREATE TABLE with empty name")
	}
	if _, exists := m.Tables[tableName]; exists {
		return fmt.Errorf("schema: duplicate CREATE TABLE %s", tableName)
	}

	cols := make([]ir.SchemaColumn, 0, len(stmt.Columns))
	pkCols := map[string]bool{}
	for _, tc := range stmt.Constraints {
		if pk, ok := tc.(*rsql.PrimaryKeyTableConstraint); ok {
			for _, c := range pk.Columns {
				pkCols[c.Name.String()] = true
			}
		}
	}

	for _, colDef := range stmt.Columns {
		name := colDef.Name.Name.String()
		notNull := false
		pk := pkCols[name]
		var fkTable string
		for _, constraint := range colDef.Constraints {
			switch c := constraint.(type) {
			case *rsql.NotNullConstraint:
				notNull = true
			case *rsql.PrimaryKeyConstraint:
				pk = true
			case *rsql.ForeignKeyConstraint:
				fkTable = c.ForeignTable.Name.String()
			}
		}
		declaredType := ""
		if colDef.Type != nil {
			declaredType = colDef.Type.Name.String()
		}
		cols = append(cols, ir.SchemaColumn{
			Table:           tableName,
			Column:          name,
			Type:            ir.NormalizeType(declaredType),
			NotNull:         notNull,
			PK:              pk,
			ForeignKeyTable: fkTable,
		})
	}

	m.Tables[tableName] = cols
	m.Order = append(m.Order, tableName)
	return nil
}

func foldDropTable(m *ir.SchemaMap, stmt *rsql.DropTableStatement) error {
	name := stmt.Name.Name.String()
	delete(m.Tables, name)
	m.RemoveFromOrder(name)
	return nil
}

// alterOp classifies the textual shape of an ALTER TABLE statement. The
// rqlite/sql AST exposes RENAME TO / RENAME COLUMN / ADD COLUMN / DROP
// COLUMN as distinct statement shapes, but this pins to the canonical,
// fully-quoted SQL text (stmt.String(), the same text the teacher's own
// DDL handling treats as ground truth) rather than the sub-clause field
// layout, since that layout differs across rqlite/sql versions.
var (
	reRenameTo    = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+"?([\w]+)"?\s+RENAME\s+TO\s+"?([\w]+)"?`)
	reRenameCol   = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+"?([\w]+)"?\s+RENAME\s+(?:COLUMN\s+)?"?([\w]+)"?\s+TO\s+"?([\w]+)"?`)
	reAddCol      = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+"?([\w]+)"?\s+ADD\s+(?:COLUMN\s+)?"?([\w]+)"?\s+([\w]+)(.*)`)
	reDropCol     = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+"?([\w]+)"?\s+DROP\s+(?:COLUMN\s+)?"?([\w]+)"?`)
)

func foldAlterTable(m *ir.SchemaMap, stmt *rsql.AlterTableStatement) error {
	text := stmt.String()

	// RENAME COLUMN must be checked before RENAME TO: both start with
	// "RENAME", and a plain "RENAME TO" has no source column name.
	if match := reRenameCol.FindStringSubmatch(text); match != nil {
		table, from, to := match[1], match[2], match[3]
		cols, ok := m.Tables[table]
		if !ok {
			return fmt.Errorf("schema: RENAME COLUMN on unknown table %s", table)
		}
		idx := -1
		for i, c := range cols {
			if c.Column == from {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("schema: RENAME COLUMN %s.%s: column not found", table, from)
		}
		renamed := cols[idx]
		renamed.Column = to
		cols = append(cols[:idx], cols[idx+1:]...)
		// Moved to the end: an intentional, preserved quirk (§9).
		cols = append(cols, renamed)
		m.Tables[table] = cols
		return nil
	}

	if match := reRenameTo.FindStringSubmatch(text); match != nil {
		from, to := match[1], match[2]
		cols, ok := m.Tables[from]
		if !ok {
			return fmt.Errorf("schema: RENAME TO on unknown table %s", from)
		}
		delete(m.Tables, from)
		for i := range cols {
			cols[i].Table = to
		}
		m.Tables[to] = cols
		m.RenameInOrder(from, to)
		return nil
	}

	if match := reAddCol.FindStringSubmatch(text); match != nil {
		table, col, declaredType, rest := match[1], match[2], match[3], match[4]
		notNull := strings.Contains(strings.ToUpper(rest), "NOT NULL")
		_, ok := m.Tables[table]
		if !ok {
			return fmt.Errorf("schema: ADD COLUMN on unknown table %s", table)
		}
		m.Tables[table] = append(m.Tables[table], ir.SchemaColumn{
			Table:   table,
			Column:  col,
			Type:    ir.NormalizeType(declaredType),
			NotNull: notNull,
		})
		return nil
	}

	if match := reDropCol.FindStringSubmatch(text); match != nil {
		table, col := match[1], match[2]
		cols, ok := m.Tables[table]
		if !ok {
			return fmt.Errorf("schema: DROP COLUMN on unknown table %s", table)
		}
		for i, c := range cols {
			if c.Column == col {
				m.Tables[table] = append(cols[:i], cols[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("schema: DROP COLUMN %s.%s: column not found", table, col)
	}

	return fmt.Errorf("schema: unrecognized ALTER TABLE shape: %s", text)
}
