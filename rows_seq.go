package sqlg

import "github.com/jmoiron/sqlx"

// RowsSeq is what DB.SelectSeq and Tx.SelectSeq return, and what backs the
// KindStream ("_stream" suffix) shape of generated accessors (emit.go):
// the generated function returns a *RowsSeq directly, and callers range
// over seq.Iter(&row) (an iter.Seq-shaped func(func(any) bool), matching
// Go's range-over-func iterator form) to pull rows one at a time instead of
// materializing a full []T slice the way KindMany does.
type RowsSeq struct {
	err  error
	rows *sqlx.Rows
}

var emptySeq = func(func(any) bool) {}

// Iter scans each row into dest in turn, yielding after every scan. The
// loop stops early if the yield func returns false, same as stdlib
// range-over-func iterators; check Err after the range completes.
func (e *RowsSeq) Iter(dest any) func(func(any) bool) {
	if e.err != nil {
		return emptySeq
	} else if err := e.rows.Err(); err != nil {
		e.err = err
		return emptySeq
	} else {
		return func(fn func(any) bool) {
			for e.rows.Next() {
				if err := e.rows.StructScan(dest); err != nil {
					e.err = err
					e.rows.Close()
					return
				}
				if !fn(dest) {
					e.err = e.rows.Close()
					return
				}
			}
			if err := e.rows.Err(); err != nil {
				e.err = err
			} else {
				e.err = e.rows.Close()
			}
		}
	}
}

func (e *RowsSeq) Err() error {
	return e.err
}
