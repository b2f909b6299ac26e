// Package csvdir reads the input tables from CSV exports.
//
// Each table is one file; sheet hints do not apply. Comma and semicolon
// separated files are both accepted, the separator is taken from the header
// line. A UTF-8 byte order mark is skipped.
package csvdir

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/source"
)

const Ext = ".csv"

var bom = []byte{0xEF, 0xBB, 0xBF}

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
	return source.Collect(ctx, dir, Ext, s.Layout, readTable, s.Logger)
}

func readTable(_ context.Context, path, table, _ string) (*generic.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, table)
}

// Read parses one CSV document into a table.
func Read(r io.Reader, table string) (*generic.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}
	sep := detectSeparator(br)

	reader := gocsv.LazyCSVReader(br)
	if cr, ok := reader.(*csv.Reader); ok {
		cr.Comma = sep
		cr.FieldsPerRecord = -1
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return source.FromRecords(table, records), nil
}

// detectSeparator picks ';' when the header line has more semicolons than commas.
func detectSeparator(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
