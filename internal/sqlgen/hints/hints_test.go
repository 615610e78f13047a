package hints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlgenhq/sqlg/internal/sqlgen/hints"
	"github.com/sqlgenhq/sqlg/internal/sqlgen/ir"
)

func TestIsHinted(t *testing.T) {
	assert.True(t, hints.IsHinted("ff__TEXT"))
	assert.True(t, hints.IsHinted("id__INTEGER__NOT_NULL"))
	assert.False(t, hints.IsHinted("id"))
}

func TestParse_TypeOnly(t *testing.T) {
	h, err := hints.Parse("ff__TEXT")
	require.NoError(t, err)
	assert.Equal(t, hints.Hint{Name: "ff", Type: ir.TypeText, Nullable: false}, h)
}

func TestParse_TypeAndNullability(t *testing.T) {
	cases := []struct {
		name     string
		wantType ir.SQLiteType
		wantNull bool
	}{
		{"id__INTEGER__NOT_NULL", ir.TypeInteger, false},
		{"id__INTEGER__NULLABLE", ir.TypeInteger, true},
		{"count__integer__not_null", ir.TypeInteger, false},
		{"ratio__DOUBLE__NULLABLE", ir.TypeReal, true},
		{"payload__BLOB__NULLABLE", ir.TypeBlob, true},
	}
	for _, c := range cases {
		h, err := hints.Parse(c.name)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.wantType, h.Type, c.name)
		assert.Equal(t, c.wantNull, h.Nullable, c.name)
	}
}

func TestParse_CaseInsensitiveNullability(t *testing.T) {
	h, err := hints.Parse("x__TEXT__nullable")
	require.NoError(t, err)
	assert.True(t, h.Nullable)
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"noseparator",
		"x__UNKNOWNTYPE",
		"x__TEXT__MAYBE",
		"x__TEXT__extra__extra",
	}
	for _, name := range cases {
		_, err := hints.Parse(name)
		assert.Error(t, err, name)
	}
}
