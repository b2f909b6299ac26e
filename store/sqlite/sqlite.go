/*
Package sqlite provides a SQLite-backed input source.

PURPOSE:
  Keeps the input tables of a competency in one database file instead of ten
  spreadsheets. Tables are imported once (usually right after reading the
  monthly workbooks) and loaded back on later runs, cell types included.

KEY TABLES:
  input_catalog:  One row per imported table: original column names, source
                  file, row count, import time
  in_<table>:     The rows of one input table, one SQL column per original
                  column (c0, c1, ...), in source order (rowid)

  Column names in the source exports are free text (accents, dots, spaces),
  so SQL columns are positional and the catalog carries the real header.

CELL TYPES:
  SQLite columns are declared without a type, so each cell keeps the storage
  class it was written with: TEXT, INTEGER, REAL or NULL. Dates are written
  as ISO "YYYY-MM-DD" text and decimals as their exact text form.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; one open connection.

USAGE:
  store, err := sqlite.New("./entradas.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  err = store.ImportTables(ctx, tables, report)
  tables, report, err := store.LoadTables(ctx)

SEE ALSO:
  - source/source.go: Source interface and file report
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/voucher"
)

// DefaultFile is the database looked up when a source location is a directory.
const DefaultFile = "entradas.db"

// Store holds imported input tables.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would be a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the catalog.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS input_catalog (
		table_name TEXT PRIMARY KEY,
		sql_table TEXT NOT NULL UNIQUE,
		columns_json TEXT NOT NULL,
		source_file TEXT,
		row_count INTEGER NOT NULL,
		imported_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// IMPORT
// =============================================================================

// CatalogEntry describes one imported table.
type CatalogEntry struct {
	Table      string
	SQLTable   string
	Columns    []string
	SourceFile string
	RowCount   int
	ImportedAt time.Time
}

// ImportTables replaces the stored copy of every given table atomically.
// Tables not in the map are left untouched.
func (s *Store) ImportTables(ctx context.Context, tables generic.Tables, report source.FileReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, name := range names {
		if err := importTable(ctx, sqlTx, name, tables[name], report[name], now); err != nil {
			return fmt.Errorf("failed to import %s: %w", name, err)
		}
	}

	return sqlTx.Commit()
}

func importTable(ctx context.Context, tx *sql.Tx, name string, t *generic.Table, sourceFile, importedAt string) error {
	if t == nil {
		t = &generic.Table{Name: name}
	}
	sqlTable := sqlTableName(name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlTable); err != nil {
		return err
	}

	cols := make([]string, len(t.Columns))
	for i := range t.Columns {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", sqlTable, strings.Join(cols, ", "))
	if len(cols) == 0 {
		ddl = fmt.Sprintf("CREATE TABLE %s (c0)", sqlTable)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return err
	}

	if len(cols) > 0 && len(t.Rows) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		stmt, err := tx.PrepareContext(ctx,
			fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", sqlTable, strings.Join(cols, ", "), placeholders))
		if err != nil {
			return err
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for _, row := range t.Rows {
			for i := range cols {
				args[i] = toSQLValue(row[i])
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return err
			}
		}
	}

	columnsJSON, err := json.Marshal(t.Columns)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO input_catalog (table_name, sql_table, columns_json, source_file, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
			columns_json = excluded.columns_json,
			source_file = excluded.source_file,
			row_count = excluded.row_count,
			imported_at = excluded.imported_at
	`, name, sqlTable, string(columnsJSON), nullString(sourceFile), len(t.Rows), importedAt)
	return err
}

// =============================================================================
// LOAD
// =============================================================================

// Catalog lists the imported tables by name.
func (s *Store) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog(ctx)
}

func (s *Store) catalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, sql_table, columns_json, source_file, row_count, imported_at
		FROM input_catalog
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var (
			e           CatalogEntry
			columnsJSON string
			sourceFile  sql.NullString
			importedAt  string
		)
		if err := rows.Scan(&e.Table, &e.SQLTable, &columnsJSON, &sourceFile, &e.RowCount, &importedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(columnsJSON), &e.Columns); err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", e.Table, err)
		}
		e.SourceFile = sourceFile.String
		e.ImportedAt, _ = time.Parse(time.RFC3339, importedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadTables returns every imported table and the file each came from.
func (s *Store) LoadTables(ctx context.Context) (generic.Tables, source.FileReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.catalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	tables := make(generic.Tables, len(entries))
	report := make(source.FileReport, len(entries))
	for _, e := range entries {
		t, err := s.loadTable(ctx, e)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", e.Table, err)
		}
		tables[e.Table] = t
		report[e.Table] = e.SourceFile
		if e.SourceFile == "" {
			report[e.Table] = e.SQLTable
		}
	}
	return tables, report, nil
}

func (s *Store) loadTable(ctx context.Context, e CatalogEntry) (*generic.Table, error) {
	t := generic.NewTable(e.Table, e.Columns)
	if len(e.Columns) == 0 {
		return t, nil
	}
	cols := make([]string, len(e.Columns))
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(cols, ", "), e.SQLTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		row := make(generic.Row, len(cols))
		dest := make([]any, len(cols))
		for i := range dest {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		t.Append(row)
	}
	return t, rows.Err()
}

// Reset drops every imported table.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.catalog(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+e.SQLTable); err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM input_catalog")
	return err
}

// =============================================================================
// SOURCE
// =============================================================================

// Source loads the input tables from a database file. A directory location
// means DefaultFile inside it.
type Source struct {
	Logger *slog.Logger
}

func NewSource(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{Logger: logger}
}

// Load implements source.Source. Input tables absent from the database are
// empty and reported as not found.
func (src *Source) Load(ctx context.Context, location string) (generic.Tables, source.FileReport, error) {
	path := location
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		path = filepath.Join(location, DefaultFile)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", source.ErrNotFound, path)
	}

	store, err := New(path)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	tables, report, err := store.LoadTables(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range voucher.InputTables {
		if _, ok := tables[name]; !ok {
			src.Logger.Warn("sqlite: table not imported", "table", name, "db", path)
			tables[name] = &generic.Table{Name: name}
			report[name] = source.NotFound
		}
	}
	src.Logger.Info("sqlite: loaded", "db", path, "tables", len(tables))
	return tables, report, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sqlTableName derives a safe identifier from a table name.
func sqlTableName(name string) string {
	var b strings.Builder
	b.WriteString("in_")
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func toSQLValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, int64, float64, []byte:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return generic.FromTime(x).String()
	case generic.TimePoint:
		return x.String()
	case decimal.Decimal:
		return x.String()
	}
	return generic.ToString(v)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
