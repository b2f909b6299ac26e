package csvdir_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/source/csvdir"
	"github.com/warp/benefit-engine/voucher"
)

func TestRead_CommaSeparated(t *testing.T) {
	tbl, err := csvdir.Read(strings.NewReader("MATRICULA,DIAS DE FERIAS\n1,10\n2,\n"), voucher.TableVacations)
	require.NoError(t, err)

	assert.Equal(t, []string{"MATRICULA", "DIAS DE FERIAS"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "10", tbl.Value(0, "DIAS DE FERIAS"))
	assert.Nil(t, tbl.Value(1, "DIAS DE FERIAS"), "blank cells are nil")
}

func TestRead_SemicolonWithBOM(t *testing.T) {
	// GIVEN: An Excel-style CSV export: BOM, semicolons, decimal commas
	// THEN: Header and values survive intact

	doc := "\xEF\xBB\xBFESTADO;VALOR\nParaná;35,00\n\"São Paulo\";37,5\n"

	tbl, err := csvdir.Read(strings.NewReader(doc), voucher.TableRegionValues)
	require.NoError(t, err)

	assert.Equal(t, []string{"ESTADO", "VALOR"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "São Paulo", tbl.Value(1, "ESTADO"))
	assert.Equal(t, "35,00", tbl.Value(0, "VALOR"))
}

func TestRead_RaggedRows(t *testing.T) {
	tbl, err := csvdir.Read(strings.NewReader("BASE DIAS UTEIS\nSINDICADO,DIAS UTEIS\nSINDPD SP,22\n"), voucher.TableWorkingDays)
	require.NoError(t, err)

	assert.Equal(t, []string{"BASE DIAS UTEIS", "C1"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ATIVOS.csv"),
		[]byte("MATRICULA,TITULO DO CARGO,SINDICATO\n1,ANALISTA,SINDPD SP\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ATIVOS.xlsx"), []byte("not a csv"), 0o644))

	tables, report, err := csvdir.New(source.DefaultLayout(), nil).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, tables.Get(voucher.TableActive).Len())
	assert.Equal(t, "ATIVOS.csv", report[voucher.TableActive])
	assert.Equal(t, source.NotFound, report[voucher.TableOverseas])
}
