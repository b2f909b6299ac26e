/*
Package source locates and loads the raw input tables of a run.

PURPOSE:
  HR delivers one export per input table, with names that change slightly
  every month ("ATIVOS.xlsx", "ATIVOS 05-2025.xlsx"). A Layout maps each
  table to a file-name fragment and an optional sheet hint; a backend reads
  the matched file into a generic.Table.

BACKENDS:
  source/xlsx:   Excel workbooks (excelize)
  source/csvdir: CSV files (gocsv)
  store/sqlite:  A SQLite database holding previously imported tables

RULES:
  - Matching is case- and accent-insensitive on the file name
  - The first match in lexical order wins
  - A table without a configured fragment is skipped silently
  - A configured table without a matching file loads as an empty table and
    is reported as "Não encontrado"; the run goes on
  - A missing input directory fails the load

SEE ALSO:
  - pipeline/orchestrator.go: Consumes Source
  - config/config.go: Layout from config.yaml
*/
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
	"github.com/warp/benefit-engine/voucher"
)

// NotFound is the file report entry of a table without a matching file.
const NotFound = "Não encontrado"

var (
	// ErrNotFound is returned when the input location does not exist.
	ErrNotFound = errors.New("source: input location not found")

	// ErrNoFile is returned by Find when no file matches.
	ErrNoFile = errors.New("source: no matching file")
)

// Source loads every input table of a run from a location (a directory or
// a database file, depending on the backend).
type Source interface {
	Load(ctx context.Context, location string) (generic.Tables, FileReport, error)
}

// FileReport maps each table to the file it was read from, or NotFound.
type FileReport map[string]string

// Tables returns the reported table names in collection order.
func (r FileReport) Tables() []string {
	var out []string
	for _, t := range voucher.InputTables {
		if _, ok := r[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// LAYOUT
// =============================================================================

// ConfigKey ties a config.yaml key to the input table it configures.
type ConfigKey struct {
	Key   string
	Table string
}

// ConfigKeys are the arquivos_entrada/sheets keys in collection order.
var ConfigKeys = []ConfigKey{
	{"ativos", voucher.TableActive},
	{"admissoes", voucher.TableAdmissions},
	{"desligados", voucher.TableTerminations},
	{"ferias", voucher.TableVacations},
	{"afastamentos", voucher.TableLeaves},
	{"aprendiz", voucher.TableApprentices},
	{"estagio", voucher.TableInterns},
	{"exterior", voucher.TableOverseas},
	{"dias_uteis", voucher.TableWorkingDays},
	{"sind_valor", voucher.TableRegionValues},
}

// TableForKey resolves a config key to its table.
func TableForKey(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, ck := range ConfigKeys {
		if ck.Key == k {
			return ck.Table, true
		}
	}
	return "", false
}

// Layout locates each input table. Both maps are keyed by table name.
type Layout struct {
	Files  map[string]string
	Sheets map[string]string
}

// DefaultLayout matches the file names of the monthly HR exports.
func DefaultLayout() Layout {
	return Layout{
		Files: map[string]string{
			voucher.TableActive:       "ATIVOS",
			voucher.TableAdmissions:   "ADMISSAO",
			voucher.TableTerminations: "DESLIGADOS",
			voucher.TableVacations:    "FERIAS",
			voucher.TableLeaves:       "AFASTAMENTOS",
			voucher.TableApprentices:  "APRENDIZ",
			voucher.TableInterns:      "ESTAGIO",
			voucher.TableOverseas:     "EXTERIOR",
			voucher.TableWorkingDays:  "Dias Uteis",
			voucher.TableRegionValues: "sindicato x valor",
		},
		Sheets: map[string]string{},
	}
}

// LayoutFromKeys builds a layout from config-keyed maps. Unknown keys are
// returned so the caller can reject them.
func LayoutFromKeys(files, sheets map[string]string) (Layout, []string) {
	l := Layout{Files: make(map[string]string), Sheets: make(map[string]string)}
	var unknown []string
	for k, v := range files {
		if t, ok := TableForKey(k); ok {
			l.Files[t] = v
		} else {
			unknown = append(unknown, k)
		}
	}
	for k, v := range sheets {
		if t, ok := TableForKey(k); ok {
			l.Sheets[t] = v
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return l, unknown
}

// =============================================================================
// DISCOVERY
// =============================================================================

// Find returns the first file of dir with the extension whose name
// contains the fragment.
func Find(dir, ext, fragment string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	want := schema.Fold(strings.TrimSpace(fragment))
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		if strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if strings.Contains(schema.Fold(e.Name()), want) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: '%s' em %s", ErrNoFile, fragment, dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// ReadFunc reads one table from a matched file.
type ReadFunc func(ctx context.Context, path, table, sheetHint string) (*generic.Table, error)

// Collect runs discovery and read for every table of the layout.
func Collect(ctx context.Context, dir, ext string, layout Layout, read ReadFunc, logger *slog.Logger) (generic.Tables, FileReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	tables := make(generic.Tables)
	report := make(FileReport)
	for _, ck := range ConfigKeys {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		fragment := layout.Files[ck.Table]
		if fragment == "" {
			logger.Warn("source: no file configured, skipping", "key", ck.Key)
			continue
		}
		path, err := Find(dir, ext, fragment)
		if err != nil {
			logger.Warn("source: file not found", "table", ck.Table, "fragment", fragment, "dir", dir)
			tables[ck.Table] = &generic.Table{Name: ck.Table}
			report[ck.Table] = NotFound
			continue
		}
		logger.Info("source: reading", "table", ck.Table, "file", filepath.Base(path))
		t, err := read(ctx, path, ck.Table, layout.Sheets[ck.Table])
		if err != nil {
			return nil, nil, fmt.Errorf("source: read %s: %w", filepath.Base(path), err)
		}
		tables[ck.Table] = t
		report[ck.Table] = filepath.Base(path)
	}
	return tables, report, nil
}

// =============================================================================
// RECORDS
// =============================================================================

// FromRecords builds a table from a header record followed by data records.
// Blank cells become nil, blank rows are dropped and blank headers are named
// C<index>.
func FromRecords(name string, records [][]string) *generic.Table {
	if len(records) == 0 {
		return &generic.Table{Name: name}
	}
	width := 0
	for _, r := range records {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	for i := range header {
		if i < len(records[0]) && strings.TrimSpace(records[0][i]) != "" {
			header[i] = records[0][i]
		} else {
			header[i] = fmt.Sprintf("C%d", i)
		}
	}

	t := generic.NewTable(name, header)
	for _, rec := range records[1:] {
		row := make(generic.Row, width)
		blank := true
		for i, cell := range rec {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[i] = cell
			blank = false
		}
		if !blank {
			t.Append(row)
		}
	}
	return t
}
