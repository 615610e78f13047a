package sqlg

import (
	"errors"
	"fmt"
	"strings"
)

// Error wraps any error raised by a Handle/Sqler operation so that Must and
// Mustv panic with a single recognizable type. Classifier helpers below let
// callers recover and branch on the runtime error taxonomy without caring
// whether the underlying driver is mattn/go-sqlite3 or libsql.
type Error struct {
	Err error
}

func (e Error) Error() string {
	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// ErrConnectionClosed is returned or wrapped when an operation is attempted
// against a DB or Tx whose underlying connection has already been closed.
var ErrConnectionClosed = errors.New("sqlg: connection closed")

// ErrRowNotFound is returned by accessors generated for the "_first" suffix
// when the query produced no rows.
var ErrRowNotFound = errors.New("sqlg: row not found")

// ErrTooManyRows is returned by accessors generated for the "_first" suffix
// when the query unexpectedly produced more than one row.
var ErrTooManyRows = errors.New("sqlg: too many rows in result")

// UniqueConstraintError reports a UNIQUE constraint violation, naming the
// conflicting index or column when sqlite reports it.
type UniqueConstraintError struct {
	Target string
	Err    error
}

func (e *UniqueConstraintError) Error() string {
	if e.Target == "" {
		return "sqlg: unique constraint violation"
	}
	return fmt.Sprintf("sqlg: unique constraint violation on %s", e.Target)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

// classifyDriverError maps a raw driver error (sqlite3.Error, libsql error
// strings) onto the runtime error taxonomy. It is intentionally permissive:
// anything it doesn't recognize is returned unchanged.
func classifyDriverError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		target := strings.TrimSpace(strings.TrimPrefix(msg, "UNIQUE constraint failed:"))
		return &UniqueConstraintError{Target: target, Err: err}
	case strings.Contains(msg, "database is closed"):
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	default:
		return err
	}
}

// IsRowNotFound reports whether err (or any error it wraps) is ErrRowNotFound.
func IsRowNotFound(err error) bool { return errors.Is(err, ErrRowNotFound) }

// IsUniqueConstraint reports whether err (or any error it wraps) is a
// *UniqueConstraintError.
func IsUniqueConstraint(err error) bool {
	var target *UniqueConstraintError
	return errors.As(err, &target)
}

// SchemaConflictError holds detailed information about a single schema mismatch
// detected during the schema comparison phase of AutoMigrate.
// It identifies the schema element, the type of conflict, the specific property
// involved, and the expected versus actual values.
type SchemaConflictError struct {
	// ElementName is the name of the schema element (e.g., table name, index name)
	// that has a conflict.
	ElementName string
	// ConflictType provides a category for the conflict
	// (e.g., "ColumnTypeMismatch", "MissingColumn", "PrimaryKeyChanged").
	ConflictType string
	// PropertyName describes the specific part of the element that has a conflict
	// (e.g., "Column 'email'.Type", "PrimaryKey Columns").
	PropertyName string
	// ExpectedValue is the string representation of what the schema definition expected.
	ExpectedValue string
	// ActualValue is the string representation of what was found in the database.
	ActualValue string
	// Err is an optional underlying error that might have caused or been related to this conflict.
	Err error
}

// Error implements the error interface, providing a human-readable description of the conflict.
func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict for %s (%s): property '%s', expected '%s', got '%s'",
		e.ElementName, e.ConflictType, e.PropertyName, e.ExpectedValue, e.ActualValue)
}

// Unwrap allows for inspecting the underlying error using errors.Is or errors.As.
func (e *SchemaConflictError) Unwrap() error {
	return e.Err
}

// ErrTableDeletionNotAllowed is returned by AutoMigrate when the desired schema
// omits tables that exist in the database and allowTableDeletes was false.
type ErrTableDeletionNotAllowed struct {
	Tables []string
}

func (e ErrTableDeletionNotAllowed) Error() string {
	return fmt.Sprintf("sqlg: auto migrate would drop tables %v; pass allowTableDeletes=true to permit this", e.Tables)
}

// ErrSchemaConflicts is an error type that aggregates one or more SchemaConflictError instances.
// It is returned by AutoMigrate when unresolvable differences are found between the desired
// schema and the actual database schema, specifically for table structures.
type ErrSchemaConflicts struct {
	// Conflicts is a slice containing the individual schema conflict details.
	Conflicts []SchemaConflictError
}

// Error implements the error interface. If there's only one conflict, it returns the
// error message of that single conflict. Otherwise, it returns a summary message
// indicating the number of conflicts and the message of the first conflict.
func (e *ErrSchemaConflicts) Error() string {
	if len(e.Conflicts) == 0 {
		return "no schema conflicts" // Should ideally not happen if this error is returned
	}
	if len(e.Conflicts) == 1 {
		return e.Conflicts[0].Error()
	}
	return fmt.Sprintf("%d schema conflicts found; first: %s", len(e.Conflicts), e.Conflicts[0].Error())
}
