package generic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TABLE - Named columns over loosely typed rows
// =============================================================================

// Row holds one cell per column, aligned with Table.Columns.
// Cells are whatever the data source produced: string, int64, float64,
// []byte, time.Time or nil.
type Row []any

// Table is an in-memory sheet. Transformations return new tables; a Table
// handed to the core is never mutated in place.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable builds a table; rows shorter than the header are padded with nil.
func NewTable(name string, columns []string, rows ...Row) *Table {
	t := &Table{Name: name, Columns: append([]string(nil), columns...)}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(r Row) {
	row := make(Row, len(t.Columns))
	copy(row, r)
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports a table with no rows. A nil table is empty.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// Index returns the position of a column, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Missing returns the required columns the table lacks, in the order given.
func (t *Table) Missing(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Require fails with a MissingColumnsError when any column is absent.
func (t *Table) Require(required ...string) error {
	if missing := t.Missing(required...); len(missing) > 0 {
		return &MissingColumnsError{Table: t.Name, Columns: missing}
	}
	return nil
}

// Value returns the cell at (row, col); nil when the column does not exist.
func (t *Table) Value(row int, col string) any {
	i := t.Index(col)
	if i < 0 || row < 0 || row >= t.Len() {
		return nil
	}
	return t.Rows[row][i]
}

// Column returns every cell of a column; nil when the column does not exist.
func (t *Table) Column(col string) []any {
	i := t.Index(col)
	if i < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Clone copies the header and the row slices (cells are shared values).
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}

// RenameColumns returns a copy whose header is rewritten by fn.
func (t *Table) RenameColumns(fn func(i int, name string) string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		out.Columns[i] = fn(i, c)
	}
	return out
}

// =============================================================================
// TABLES - A run's full set of inputs keyed by table name
// =============================================================================

type Tables map[string]*Table

// Get never returns nil: an absent table is an empty one.
func (ts Tables) Get(name string) *Table {
	if t, ok := ts[name]; ok && t != nil {
		return t
	}
	return &Table{Name: name}
}

// Clone returns a shallow copy of the map; tables are shared.
func (ts Tables) Clone() Tables {
	out := make(Tables, len(ts))
	for k, v := range ts {
		out[k] = v
	}
	return out
}

// =============================================================================
// CELL COERCION - Loose spreadsheet cells to typed values
// =============================================================================

// IsNull reports nil cells and blank strings.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	case float64:
		return math.IsNaN(x)
	}
	return false
}

// ToString renders a cell as text. Nil is the empty string; integral floats
// lose their trailing ".0".
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return FromTime(x).String()
	case TimePoint:
		return x.String()
	case decimal.Decimal:
		return x.String()
	}
	return fmt.Sprint(v)
}

// ToInt coerces a cell to an integer. Non-integral numbers and text that is
// not a number fail.
func ToInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if math.IsNaN(x) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case decimal.Decimal:
		if !x.Equal(x.Truncate(0)) {
			return 0, false
		}
		return x.IntPart(), true
	case string, []byte:
		s := strings.TrimSpace(ToString(x))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if d, ok := ToDecimal(s); ok {
			return ToInt(d)
		}
	}
	return 0, false
}

// ToDecimal coerces a cell to a decimal number. A lone comma is accepted as
// the decimal separator ("35,50").
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case decimal.Decimal:
		return x, true
	case string, []byte:
		s := strings.TrimSpace(ToString(x))
		if s == "" {
			return decimal.Zero, false
		}
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// ToDate coerces a cell to a calendar day. Numbers are read as Excel serials.
func ToDate(v any) (TimePoint, bool) {
	switch x := v.(type) {
	case TimePoint:
		return x, !x.IsZero()
	case time.Time:
		if x.IsZero() {
			return TimePoint{}, false
		}
		return FromTime(x), true
	case float64:
		return FromExcelSerial(x)
	case int64:
		return FromExcelSerial(float64(x))
	case int:
		return FromExcelSerial(float64(x))
	case string, []byte:
		return ParseTimePoint(ToString(x))
	}
	return TimePoint{}, false
}

// ToDatePtr is ToDate with a nil result for unparseable cells.
func ToDatePtr(v any) *TimePoint {
	if d, ok := ToDate(v); ok {
		return &d
	}
	return nil
}

// SumDecimal totals the numeric cells of a column; other cells are skipped.
func (t *Table) SumDecimal(col string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range t.Column(col) {
		if d, ok := ToDecimal(v); ok {
			total = total.Add(d)
		}
	}
	return total
}
