package sqlg

import (
	"fmt"

	"github.com/google/uuid"
)

// WithSavepoint runs fn inside a SQLite SAVEPOINT nested within tx. It
// commits via RELEASE when fn returns nil and rolls back to the savepoint
// (leaving tx itself live) when fn returns an error, so callers can recover
// part of a larger transaction instead of aborting the whole thing.
//
// Each call picks a fresh savepoint name; nested calls never collide.
func WithSavepoint(tx Tx, fn func(Tx) error) (err error) {
	name := "sqlg_" + uuid.New().String()[:8]
	if _, execErr := tx.Exec(fmt.Sprintf("SAVEPOINT %s", name)); execErr != nil {
		return fmt.Errorf("sqlg: create savepoint %s: %w", name, execErr)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Exec(fmt.Sprintf("ROLLBACK TO %s", name))
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if _, rbErr := tx.Exec(fmt.Sprintf("ROLLBACK TO %s", name)); rbErr != nil {
			return fmt.Errorf("sqlg: rollback to savepoint %s after %w: %v", name, err, rbErr)
		}
		return err
	}

	if _, relErr := tx.Exec(fmt.Sprintf("RELEASE %s", name)); relErr != nil {
		return fmt.Errorf("sqlg: release savepoint %s: %w", name, relErr)
	}
	return nil
}
