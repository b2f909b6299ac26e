package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/benefit-engine/generic"
)

func TestTable_MissingAndRequire(t *testing.T) {
	tbl := generic.NewTable("ATIVOS", []string{"MATRICULA", "SINDICATO"})

	assert.Equal(t, []string{"TITULO DO CARGO"}, tbl.Missing("MATRICULA", "TITULO DO CARGO", "SINDICATO"))

	err := tbl.Require("MATRICULA", "TITULO DO CARGO")
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrMissingColumn)

	var mc *generic.MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "ATIVOS", mc.Table)
	assert.Contains(t, err.Error(), "TITULO DO CARGO")
}

func TestTable_AppendPadsShortRows(t *testing.T) {
	tbl := generic.NewTable("T", []string{"A", "B", "C"}, generic.Row{1})

	require.Equal(t, 1, tbl.Len())
	assert.Len(t, tbl.Rows[0], 3)
	assert.Nil(t, tbl.Value(0, "C"))
	assert.Nil(t, tbl.Value(0, "NOPE"))
}

func TestTable_RenameColumnsDoesNotMutate(t *testing.T) {
	tbl := generic.NewTable("T", []string{" a ", "b"}, generic.Row{1, 2})
	renamed := tbl.RenameColumns(func(_ int, c string) string { return "X" + c })

	assert.Equal(t, []string{" a ", "b"}, tbl.Columns)
	assert.Equal(t, []string{"X a ", "Xb"}, renamed.Columns)
}

func TestTables_GetAbsentIsEmpty(t *testing.T) {
	ts := generic.Tables{}
	got := ts.Get("FERIAS")

	require.NotNil(t, got)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, "FERIAS", got.Name)
}

// =============================================================================
// COERCION TESTS
// =============================================================================

func TestToInt(t *testing.T) {
	tests := []struct {
		in     any
		want   int64
		wantOK bool
	}{
		{int64(7), 7, true},
		{7.0, 7, true},
		{7.5, 0, false},
		{" 123 ", 123, true},
		{"123.0", 123, true},
		{"abc", 0, false},
		{nil, 0, false},
		{[]byte("42"), 42, true},
	}
	for _, tt := range tests {
		got, ok := generic.ToInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %#v", tt.in)
		assert.Equal(t, tt.want, got, "input %#v", tt.in)
	}
}

func TestToDecimal(t *testing.T) {
	d, ok := generic.ToDecimal("35,50")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("35.5")))

	d, ok = generic.ToDecimal(37.5)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("37.5")))

	_, ok = generic.ToDecimal("n/a")
	assert.False(t, ok)
}

func TestToDate(t *testing.T) {
	want := generic.NewTimePoint(2025, time.May, 15)
	inputs := []any{
		"2025-05-15",
		"15/05/2025",
		"2025-05-15 00:00:00",
		time.Date(2025, time.May, 15, 13, 0, 0, 0, time.UTC),
		45792.0,
		"45792",
	}
	for _, in := range inputs {
		got, ok := generic.ToDate(in)
		require.True(t, ok, "input %#v", in)
		assert.True(t, got.Equal(want), "input %#v parsed as %s", in, got)
	}

	_, ok := generic.ToDate("not a date")
	assert.False(t, ok)
	assert.Nil(t, generic.ToDatePtr(nil))
}

func TestToEntityID(t *testing.T) {
	id := generic.ToEntityID("34941")
	require.NotNil(t, id)
	assert.Equal(t, generic.EntityID(34941), *id)
	assert.Nil(t, generic.ToEntityID("x"))
}

func TestMoney_Share(t *testing.T) {
	total := decimal.RequireFromString("123.45")

	assert.Equal(t, "98.76", generic.Share(total, 80).StringFixed(2))
	assert.Equal(t, "24.69", generic.Share(total, 20).StringFixed(2))
	assert.True(t, generic.Ratio(1, 0).Equal(generic.One))
}
