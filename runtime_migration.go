package sqlg

import (
	"context"
	"fmt"
	"strings"
)

// ApplyMigration is the one fixed runtime routine every migration function the
// generator emits targets. It is intentionally small and intentionally not
// itself generated: generated code only ever calls it with the literal text
// of the migrate expression.
//
// Contract: create __migrations__(sql TEXT PRIMARY KEY NOT NULL) if absent;
// split migrationSQL on ';', discarding empty statements; for each statement,
// compute a whitespace-stripped fingerprint and attempt
// INSERT INTO __migrations__(sql) VALUES (?) ON CONFLICT(sql) DO NOTHING.
// The statement's original text is executed against db only when that insert
// actually added a row. This guarantees each DDL statement in the migration
// expression is applied at most once over the lifetime of a database, and
// that re-running the same migration text is always safe.
//
// Statements are applied one at a time, each its own unit — there is no
// wrapping transaction. A mid-sequence failure leaves the database partially
// migrated but __migrations__ consistent with the applied prefix, since the
// bookkeeping insert is written before the DDL runs; a later call resumes at
// the first unapplied statement.
func ApplyMigration(ctx context.Context, db DB, migrationSQL string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS __migrations__ (sql TEXT PRIMARY KEY NOT NULL)`); err != nil {
		return fmt.Errorf("sqlg: create __migrations__ bookkeeping table: %w", err)
	}

	for _, stmt := range splitMigrationStatements(migrationSQL) {
		fingerprint := stripWhitespace(stmt)

		result, err := db.ExecContext(ctx,
			`INSERT INTO __migrations__ (sql) VALUES (?) ON CONFLICT (sql) DO NOTHING`, fingerprint)
		if err != nil {
			return fmt.Errorf("sqlg: record migration fingerprint: %w", err)
		}
		changed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlg: checking migration bookkeeping result: %w", err)
		}
		if changed == 0 {
			continue // already applied in a previous run
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlg: apply migration statement %q: %w", stmt, err)
		}
	}
	return nil
}

// splitMigrationStatements splits on ';', the simplification the spec
// explicitly calls out: it will misbehave if a statement embeds a semicolon
// inside a string literal. Empty (whitespace-only) statements are dropped.
func splitMigrationStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		stmts = append(stmts, p)
	}
	return stmts
}

// stripWhitespace removes every whitespace rune so that semantically
// identical statements with different formatting fingerprint identically.
func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
