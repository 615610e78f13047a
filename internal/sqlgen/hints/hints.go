// Package hints parses the type hint convention recognized in bind
// parameter names and output column aliases: name__TYPE and
// name__TYPE__NULLABILITY.
package hints

import (
	"fmt"
	"strings"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

// Hint is a parsed type hint: the visible name with every "__segment"
// stripped, the declared type, and whether the field is nullable.
type Hint struct {
	Name     string
	Type     ir.SQLiteType
	Nullable bool
}

// IsHinted reports whether name contains the "__" separator at all. A name
// with no separator carries no hint and must be resolved against the
// schema instead.
func IsHinted(name string) bool {
	return strings.Contains(name, "__")
}

// Parse parses a hinted name. Precondition: IsHinted(name) is true.
//
// Grammar:
//
//	hint        := IDENT '__' TYPE ('__' NULLABILITY)?
//	TYPE        := 'TEXT' | 'INTEGER' | 'REAL' | 'DOUBLE' | 'BLOB'
//	NULLABILITY := 'NULLABLE' | 'NOT_NULL'   (case-insensitive)
func Parse(name string) (Hint, error) {
	segments := strings.Split(name, "__")
	switch len(segments) {
	case 2:
		typ, err := parseType(segments[1])
		if err != nil {
			return Hint{}, fmt.Errorf("invalid type hint %q: %w", name, err)
		}
		return Hint{Name: segments[0], Type: typ, Nullable: false}, nil
	case 3:
		typ, err := parseType(segments[1])
		if err != nil {
			return Hint{}, fmt.Errorf("invalid type hint %q: %w", name, err)
		}
		nullable, err := parseNullability(segments[2])
		if err != nil {
			return Hint{}, fmt.Errorf("invalid type hint %q: %w", name, err)
		}
		return Hint{Name: segments[0], Type: typ, Nullable: nullable}, nil
	default:
		return Hint{}, fmt.Errorf("invalid type hint %q: expected name__TYPE or name__TYPE__NULLABILITY", name)
	}
}

func parseType(s string) (ir.SQLiteType, error) {
	switch strings.ToUpper(s) {
	case "TEXT":
		return ir.TypeText, nil
	case "INTEGER":
		return ir.TypeInteger, nil
	case "REAL", "DOUBLE":
		return ir.TypeReal, nil
	case "BLOB":
		return ir.TypeBlob, nil
	default:
		return "", fmt.Errorf("unknown type %q", s)
	}
}

func parseNullability(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "NULLABLE":
		return true, nil
	case "NOT_NULL":
		return false, nil
	default:
		return false, fmt.Errorf("unknown nullability %q", s)
	}
}
