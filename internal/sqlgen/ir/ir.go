// Package ir holds the data model shared across every stage of the
// compile-time pipeline: declaration parsing, classification, schema
// modeling, hint parsing, type inference, and emission.
package ir

import (
	"strings"

	rsql "github.com/rqlite/sql"
)

// PascalCase converts a snake_case (or already-PascalCase) identifier into
// PascalCase, the convention used for generated struct and row type names:
// PascalCase("insert_row_returning") == "InsertRowReturning".
func PascalCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// CamelCase converts a snake_case identifier into lowerCamelCase, the
// convention used for generated accessor parameter names:
// CamelCase("friendship_id") == "friendshipId".
func CamelCase(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]))
			b.WriteString(strings.ToLower(p[1:]))
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	out := b.String()
	if out == "" {
		return s
	}
	return out
}

// SQLiteType is the normalized affinity a column or token carries after
// DOUBLE has been folded into REAL.
type SQLiteType string

const (
	TypeText    SQLiteType = "TEXT"
	TypeInteger SQLiteType = "INTEGER"
	TypeReal    SQLiteType = "REAL"
	TypeBlob    SQLiteType = "BLOB"
)

// NormalizeType folds DOUBLE (and common SQLite type-name aliases) onto the
// four affinities this system tracks. Unrecognized names default to TEXT,
// matching SQLite's own type-affinity rules for declared types it doesn't
// recognize.
func NormalizeType(declared string) SQLiteType {
	switch SQLiteType(upper(declared)) {
	case "DOUBLE", "FLOAT", "REAL":
		return TypeReal
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT":
		return TypeInteger
	case "BLOB":
		return TypeBlob
	case "TEXT", "VARCHAR", "CHAR", "CLOB", "STRING":
		return TypeText
	default:
		return TypeText
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

// NamedExpr is a Named SQL Expression: an identifier bound to raw SQL text
// and the statements the SQL Parser Adapter produced from it.
type NamedExpr struct {
	Identifier string
	SQLText    string
	Statements []rsql.Statement
}

// SchemaColumn is one column as the Schema Model Builder folds it.
type SchemaColumn struct {
	Table    string
	Column   string
	Type     SQLiteType
	NotNull  bool
	PK       bool
	ForeignKeyTable string // "" if this column is not a foreign key
}

// Nullable reports whether a field derived from this column should be
// nullable: nullable iff not NOT NULL and not part of the primary key.
func (c SchemaColumn) Nullable() bool {
	return !c.NotNull && !c.PK
}

// SchemaMap is the folded migration expression: table name to its ordered
// column list. Column order reflects the CREATE/ALTER sequence, including
// the RENAME COLUMN move-to-end quirk preserved intentionally from the
// source behavior.
type SchemaMap struct {
	Tables map[string][]SchemaColumn
	// Order preserves table declaration order for deterministic emission.
	Order []string
}

func NewSchemaMap() *SchemaMap {
	return &SchemaMap{Tables: make(map[string][]SchemaColumn)}
}

func (m *SchemaMap) ColumnsOf(table string) []SchemaColumn {
	return m.Tables[table]
}

// HasTable reports whether name (already resolved to its canonical case) is
// a known table.
func (m *SchemaMap) HasTable(name string) bool {
	_, ok := m.Tables[name]
	return ok
}

func (m *SchemaMap) RemoveFromOrder(table string) {
	for i, t := range m.Order {
		if t == table {
			m.Order = append(m.Order[:i], m.Order[i+1:]...)
			return
		}
	}
}

func (m *SchemaMap) RenameInOrder(from, to string) {
	for i, t := range m.Order {
		if t == from {
			m.Order[i] = to
			return
		}
	}
}

// FindColumn looks up a column by name across the given visible table set.
// Returns false if no table in the set has a matching column, or if more
// than one does (ambiguous, also reported as not found — callers treat this
// as a resolution failure with their own diagnostic).
func (m *SchemaMap) FindColumn(visibleTables []string, column string) (SchemaColumn, bool) {
	var found SchemaColumn
	count := 0
	for _, t := range visibleTables {
		for _, c := range m.Tables[t] {
			if c.Column == column {
				found = c
				count++
			}
		}
	}
	if count != 1 {
		return SchemaColumn{}, false
	}
	return found, true
}

// TokenOrigin distinguishes a Typed Token derived from the schema from one
// derived from an inline type hint. The hint is always authoritative; the
// two are never merged.
type TokenOrigin int

const (
	FromSchema TokenOrigin = iota
	FromHint
)

// TypedToken is either a reference to a Schema Column or a Type-Hinted
// Token, used uniformly as one ordered input or output of a query
// expression.
type TypedToken struct {
	Origin TokenOrigin
	// VisibleName is what the field/parameter is called in generated code:
	// the bind-parameter name, or the output alias, with any type hint
	// segment stripped.
	VisibleName string
	// RawName is the token exactly as it appears in the SQL text: the bind
	// parameter's literal name, or the output column's literal alias,
	// hint segment included. sql.Named and struct db tags must use this,
	// not VisibleName, since that's the identifier SQLite itself binds
	// against or reports as the result column name. Empty RawName means
	// "same as VisibleName" (no hint was present).
	RawName string
	Type     SQLiteType
	Nullable bool
	// Column is set only when Origin == FromSchema.
	Column SchemaColumn
}

// SQLName returns the token's name as it must appear on the wire: in
// sql.Named calls and struct db tags.
func (t TypedToken) SQLName() string {
	if t.RawName == "" {
		return t.VisibleName
	}
	return t.RawName
}

// FunctionKind controls which of the three accessor shapes the Code
// Emitter produces for a query expression.
type FunctionKind int

const (
	KindMany FunctionKind = iota
	KindFirst
	KindStream
)

// QueryExpr is a classified, non-DDL named expression ready for inference.
type QueryExpr struct {
	NamedExpr
	Kind FunctionKind
}

// RowType is the inferred output shape of one query expression.
type RowType struct {
	GoName  string // PascalCase(identifier)
	Outputs []TypedToken
	// EntityTable is set when this row type converts to a table entity
	// (its output alias set is a subset of one table's columns).
	EntityTable string
}

// InferredQuery bundles a query expression with its resolved inputs and
// output row type, the Code Emitter's unit of work.
type InferredQuery struct {
	Expr    QueryExpr
	Inputs  []TypedToken
	Row     RowType
}
