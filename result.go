package sqlg

import "database/sql"

// Result wraps database/sql.Result with panic-on-error variants. Generated
// _exec accessors (emit.go) and ApplyMigration's per-statement bookkeeping
// (runtime_migration.go) both take this interface rather than sql.Result
// directly, since AffectedExec/IDExec on DB and Tx hand back a Result, not
// a raw sql.Result.
type Result interface {
	// LastInsertId returns the last inserted ID.
	// It is only valid after an INSERT statement.
	LastInsertId() (int64, error)
	// LastInsertIdMust returns the last inserted ID.
	// It is only valid after an INSERT statement.
	// It panics if the last inserted ID is not available.
	LastInsertIdMust() int64

	// RowsAffected returns the number of rows affected by the last statement.
	// It is only valid after an UPDATE or DELETE statement.
	RowsAffected() (int64, error)
	// RowsAffectedMust returns the number of rows affected by the last statement.
	// It is only valid after an UPDATE or DELETE statement.
	// It panics if the number of rows affected is not available.
	RowsAffectedMust() int64
}

// sqlgResult is the concrete Result returned by every sqlxDB/sqlxTx/txWrapper
// Exec/ExecContext/NamedExec call.
type sqlgResult struct {
	r sql.Result
}

func (r sqlgResult) LastInsertId() (int64, error) {
	id, err := r.r.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r sqlgResult) LastInsertIdMust() int64 {
	id, err := r.LastInsertId()
	if err != nil {
		panic(Error{err})
	}
	return id
}

func (r sqlgResult) RowsAffected() (int64, error) {
	affected, err := r.r.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r sqlgResult) RowsAffectedMust() int64 {
	affected, err := r.RowsAffected()
	if err != nil {
		panic(Error{err})
	}
	return affected
}
