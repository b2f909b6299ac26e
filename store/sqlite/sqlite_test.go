package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/store/sqlite"
	"github.com/warp/benefit-engine/voucher"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTables() generic.Tables {
	return generic.Tables{
		voucher.TableActive: generic.NewTable(voucher.TableActive,
			[]string{"MATRICULA", "TITULO DO CARGO", "SINDICATO"},
			generic.Row{int64(34941), "TECH RECRUITER II", "SINDPD SP"},
			generic.Row{"35741", nil, "SINDPD RJ"},
		),
		voucher.TableRegionValues: generic.NewTable(voucher.TableRegionValues,
			[]string{"ESTADO  ", "VALOR"},
			generic.Row{"Paraná", 35.0},
			generic.Row{"São Paulo", decimal.RequireFromString("37.50")},
		),
		voucher.TableAdmissions: generic.NewTable(voucher.TableAdmissions,
			[]string{"MATRICULA", "ADMISSAO"},
			generic.Row{int64(1), time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)},
		),
	}
}

// =============================================================================
// IMPORT / LOAD
// =============================================================================

func TestStore_ImportThenLoad_RoundTrip(t *testing.T) {
	// GIVEN: Three tables with mixed cell types
	// WHEN: Importing and loading them back
	// THEN: Headers, order and values survive; dates and decimals come back as text

	store := newTestStore(t)
	ctx := context.Background()
	report := source.FileReport{voucher.TableActive: "ATIVOS.xlsx"}

	require.NoError(t, store.ImportTables(ctx, sampleTables(), report))

	tables, loaded, err := store.LoadTables(ctx)
	require.NoError(t, err)

	active := tables.Get(voucher.TableActive)
	assert.Equal(t, []string{"MATRICULA", "TITULO DO CARGO", "SINDICATO"}, active.Columns)
	require.Equal(t, 2, active.Len())
	assert.Equal(t, int64(34941), active.Value(0, "MATRICULA"))
	assert.Equal(t, "35741", active.Value(1, "MATRICULA"))
	assert.Nil(t, active.Value(1, "TITULO DO CARGO"))

	sv := tables.Get(voucher.TableRegionValues)
	assert.Equal(t, "ESTADO  ", sv.Columns[0], "headers are stored verbatim")
	assert.Equal(t, 35.0, sv.Value(0, "VALOR"))
	assert.Equal(t, "37.5", sv.Value(1, "VALOR"))

	d, ok := generic.ToDate(tables.Get(voucher.TableAdmissions).Value(0, "ADMISSAO"))
	require.True(t, ok)
	assert.Equal(t, "2025-05-15", d.String())

	assert.Equal(t, "ATIVOS.xlsx", loaded[voucher.TableActive])
	assert.Equal(t, "in_sind_valor", loaded[voucher.TableRegionValues], "tables without a file report their SQL name")
}

func TestStore_Import_ReplacesTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ImportTables(ctx, sampleTables(), nil))

	replacement := generic.Tables{
		voucher.TableActive: generic.NewTable(voucher.TableActive, []string{"MATRICULA"}, generic.Row{int64(7)}),
	}
	require.NoError(t, store.ImportTables(ctx, replacement, nil))

	tables, _, err := store.LoadTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Get(voucher.TableActive).Len())
	assert.Equal(t, 2, tables.Get(voucher.TableRegionValues).Len(), "other tables are untouched")

	entries, err := store.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStore_Import_EmptyTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ImportTables(ctx, generic.Tables{voucher.TableLeaves: {Name: voucher.TableLeaves}}, nil))

	tables, _, err := store.LoadTables(ctx)
	require.NoError(t, err)
	assert.True(t, tables.Get(voucher.TableLeaves).IsEmpty())
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ImportTables(ctx, sampleTables(), nil))

	require.NoError(t, store.Reset(ctx))

	tables, _, err := store.LoadTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

// =============================================================================
// SOURCE
// =============================================================================

func TestSource_Load_FromDirectory(t *testing.T) {
	// GIVEN: A directory holding entradas.db with three imported tables
	// WHEN: Loading through the Source
	// THEN: The other input tables are empty and reported as not found

	dir := t.TempDir()
	store, err := sqlite.New(filepath.Join(dir, sqlite.DefaultFile))
	require.NoError(t, err)
	require.NoError(t, store.ImportTables(context.Background(), sampleTables(), nil))
	require.NoError(t, store.Close())

	tables, report, err := sqlite.NewSource(nil).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, tables.Get(voucher.TableActive).Len())
	assert.Len(t, tables, len(voucher.InputTables))
	assert.Equal(t, source.NotFound, report[voucher.TableVacations])
}

func TestSource_Load_MissingDatabase(t *testing.T) {
	_, _, err := sqlite.NewSource(nil).Load(context.Background(), filepath.Join(t.TempDir(), "none.db"))

	assert.ErrorIs(t, err, source.ErrNotFound)
}
