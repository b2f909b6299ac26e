// Package xlsx reads the input tables from Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/source"
)

// Ext is the extension of the files this source reads.
const Ext = ".xlsx"

// Source loads every table of a layout from the workbooks of a directory.
type Source struct {
	Layout source.Layout
	Logger *slog.Logger
}

func New(layout source.Layout, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{Layout: layout, Logger: logger}
}

// Load implements source.Source.
func (s *Source) Load(ctx context.Context, dir string) (generic.Tables, source.FileReport, error) {
	return source.Collect(ctx, dir, Ext, s.Layout, s.readTable, s.Logger)
}

func (s *Source) readTable(_ context.Context, path, table, sheetHint string) (*generic.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, ok := PickSheet(f.GetSheetList(), sheetHint)
	if !ok {
		return &generic.Table{Name: table}, nil
	}
	if sheetHint != "" && sheet != sheetHint {
		s.Logger.Warn("xlsx: sheet not found, using the first one", "file", path, "hint", sheetHint, "sheet", sheet)
	}
	return ReadSheet(f, sheet, table)
}

// PickSheet returns the hinted sheet when the workbook has it, else the first.
func PickSheet(sheets []string, hint string) (string, bool) {
	if len(sheets) == 0 {
		return "", false
	}
	if hint != "" && slices.Contains(sheets, hint) {
		return hint, true
	}
	return sheets[0], true
}

// ReadSheet reads a sheet with its first row as the header. Cells are read
// raw, so dates arrive as Excel serial numbers.
func ReadSheet(f *excelize.File, sheet, table string) (*generic.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return source.FromRecords(table, rows), nil
}
