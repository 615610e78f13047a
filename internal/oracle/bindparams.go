package oracle

import (
	rsql "github.com/rqlite/sql"

	"github.com/sqlgenhq/sqlg/internal/astutil"
)

// bindParameterNames reports the named bind parameters stmt declares, in
// first-occurrence order, walked directly out of the parsed statement tree
// (astutil.BindParameterNames) rather than matched against its re-serialized
// SQL text.
func bindParameterNames(stmt rsql.Statement) []string {
	return astutil.BindParameterNames(stmt)
}
