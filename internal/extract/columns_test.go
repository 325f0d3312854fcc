package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "equip_#", NormalizeHeader(" Equip # "))
	assert.Equal(t, "driver_name", NormalizeHeader("Driver Name"))
	assert.Equal(t, "asset_id", NormalizeHeader("ASSET_ID"))
}

func TestResolveColumn_RankedFirstMatchWins(t *testing.T) {
	colIdx := MapColumns([]string{"Equipment ID", "Asset", "Driver"})

	idx, ok := ResolveColumn(colIdx, "equip_#", "equip_id", "equipment_id", "equipment", "asset_id", "asset")
	require.True(t, ok)
	assert.Equal(t, 0, idx, "equipment_id outranks asset")
}

func TestResolveColumn_NoMatch(t *testing.T) {
	colIdx := MapColumns([]string{"Foo", "Bar"})
	_, ok := ResolveColumn(colIdx, "driver", "driver_name")
	assert.False(t, ok)
}

func TestIsSentinel(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "None", "NULL"} {
		assert.True(t, IsSentinel(v), "%q", v)
	}
	for _, v := range []string{"0", "John", "n/a"} {
		assert.False(t, IsSentinel(v), "%q", v)
	}
}

func TestFindAssetColumn(t *testing.T) {
	header := []string{"Name", "Unit"}
	rows := [][]string{
		{"John Smith", "EX-210"},
		{"Alice Wu", "T104"},
		{"Bob Reyes", ""},
	}

	idx, ok := FindAssetColumn(header, rows)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFindAssetColumn_NoCandidate(t *testing.T) {
	header := []string{"Name", "Notes"}
	rows := [][]string{
		{"John Smith", "left early"},
		{"Alice Wu", "covering second shift"},
	}
	_, ok := FindAssetColumn(header, rows)
	assert.False(t, ok)
}
