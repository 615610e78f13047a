package sqlg

import "github.com/jmoiron/sqlx"

// Sqler interface that both DB and Tx implement.
type Sqler interface {
	Exec(query string, args ...any) (Result, error)
	IDExec(query string, args ...any) (int64, error)
	AffectedExec(query string, args ...any) (int, error)
	Query(query string, args ...any) (*sqlx.Rows, error)
	QueryRow(query string, args ...any) *sqlx.Row
	Get(dest any, query string, args ...any) error
	GetIn(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
	SelectIn(dest any, query string, args ...any) error
}
