/*
validator.go - Input preparation and consistency checks

PURPOSE:
  Turns schema-mapped input tables into the typed shapes the calculation
  needs and refuses to run on inputs that would silently produce a wrong
  payroll.

PREPARATION (table-local, pure):
  DIAS_UTEIS:  first row is the real header; rows become (union, days),
               non-numeric days are 0
  SIND_VALOR:  first two columns are (region, value); non-numeric values dropped
  DESLIGADOS:  trimmed headers, nullable ID, nullable date, OK flag

CHECKS:
  Critical (fail the run, all collected before failing):
    - required columns of ATIVOS, DESLIGADOS, FERIAS, ADMISSAO, SIND_VALOR
    - DIAS_UTEIS header row without union or days column
    - predominant admission month differs from the events month
  Warning (returned, run continues):
    - terminated IDs absent from the active roster

SEE ALSO:
  - errors.go: ValidationError
  - schema/schema.go: Header canonicalization
*/
package voucher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
)

// RequiredColumns lists the columns each checked table must carry.
var RequiredColumns = map[string][]string{
	TableActive:       {schema.ColID, schema.ColJobTitle, schema.ColUnion},
	TableTerminations: {schema.ColID, schema.ColTerminationAt, schema.ColTerminationOK},
	TableVacations:    {schema.ColID, schema.ColVacationDays},
	TableAdmissions:   {schema.ColID, schema.ColAdmission},
	TableRegionValues: {schema.ColRegion, schema.ColValue},
}

// checkedTables fixes the order of column-presence messages.
var checkedTables = []string{TableActive, TableTerminations, TableVacations, TableAdmissions, TableRegionValues}

// ColAcknowledged is the derived OK flag column of the prepared terminations table.
const ColAcknowledged = "OK"

// crossRefSamples caps the IDs listed in the cross-reference warning.
const crossRefSamples = 5

// Validator prepares and checks the inputs of a run.
type Validator struct {
	Mapping *schema.Mapping
}

func NewValidator() *Validator {
	return &Validator{Mapping: schema.Default()}
}

// Validate returns the prepared inputs and the non-fatal warnings, or a
// *ValidationError with every critical message.
func (v *Validator) Validate(raw generic.Tables, rc RunContext) (*Prepared, []string, error) {
	var critical, warnings []string
	var missing []*generic.MissingColumnsError
	tables := raw.Clone()
	prepared := &Prepared{Tables: tables}

	for _, name := range checkedTables {
		t := tables.Get(name)
		if name == TableTerminations {
			t = trimHeaders(t)
			tables[name] = t
		}
		if name == TableRegionValues {
			t = relabelRegionValues(t)
			tables[name] = t
		}
		if t.IsEmpty() {
			continue
		}
		var mc *generic.MissingColumnsError
		if errors.As(t.Require(RequiredColumns[name]...), &mc) {
			missing = append(missing, mc)
			critical = append(critical, fmt.Sprintf(
				"Na base '%s', colunas obrigatórias não encontradas: [%s]", name, strings.Join(mc.Columns, ", ")))
		}
	}

	if mc := v.prepareWorkingDays(tables.Get(TableWorkingDays), prepared); mc != nil {
		missing = append(missing, mc)
		critical = append(critical, fmt.Sprintf(
			"Na base '%s', cabeçalho sem as colunas: [%s]", TableWorkingDays, strings.Join(mc.Columns, ", ")))
	}
	prepared.RegionValues = prepareRegionValues(tables.Get(TableRegionValues))

	if des := tables.Get(TableTerminations); des.Require(RequiredColumns[TableTerminations]...) == nil {
		prepared.Terminations, tables[TableTerminations] = prepareTerminations(des)
	}

	if w := crossReference(tables.Get(TableActive), prepared.Terminations); w != "" {
		warnings = append(warnings, w)
	}
	if msg := checkAdmissionMonth(tables.Get(TableAdmissions), rc); msg != "" {
		critical = append(critical, msg)
	}

	if len(critical) > 0 {
		return nil, warnings, &ValidationError{Messages: critical, Missing: missing}
	}
	return prepared, warnings, nil
}

// =============================================================================
// PREPARATION
// =============================================================================

// prepareWorkingDays reads the header from the first row, unless the source
// already delivered named columns. It fails when the header lacks the union
// or days column.
func (v *Validator) prepareWorkingDays(t *generic.Table, p *Prepared) *generic.MissingColumnsError {
	if t.IsEmpty() {
		return nil
	}
	body := t
	if !t.Has(schema.ColUnion) || !t.Has(schema.ColWorkingDays) {
		body = v.promoteHeaderRow(t)
	}
	var mc *generic.MissingColumnsError
	if errors.As(body.Require(schema.ColUnion, schema.ColWorkingDays), &mc) {
		return mc
	}
	for i := range body.Rows {
		days := 0
		if d, ok := generic.ToDecimal(body.Value(i, schema.ColWorkingDays)); ok {
			days = int(d.IntPart())
		}
		p.WorkingDays = append(p.WorkingDays, UnionWorkingDays{
			Union: strings.TrimSpace(generic.ToString(body.Value(i, schema.ColUnion))),
			Days:  days,
		})
	}
	return nil
}

// promoteHeaderRow relabels the columns from the first row and drops it.
func (v *Validator) promoteHeaderRow(t *generic.Table) *generic.Table {
	header := make([]string, len(t.Columns))
	for i := range t.Columns {
		cell := t.Rows[0][i]
		if s, ok := cell.(string); ok && strings.TrimSpace(s) != "" {
			header[i] = v.Mapping.Canonical(s)
		} else {
			header[i] = fmt.Sprintf("C%d", i)
		}
	}
	return generic.NewTable(TableWorkingDays, header, t.Rows[1:]...)
}

// relabelRegionValues names the first two columns region and value.
func relabelRegionValues(t *generic.Table) *generic.Table {
	if len(t.Columns) == 0 {
		return t
	}
	return t.RenameColumns(func(i int, c string) string {
		switch i {
		case 0:
			return schema.ColRegion
		case 1:
			return schema.ColValue
		}
		return c
	})
}

func prepareRegionValues(t *generic.Table) []RegionValue {
	if !t.Has(schema.ColRegion) || !t.Has(schema.ColValue) {
		return nil
	}
	var out []RegionValue
	for i := range t.Rows {
		value, ok := generic.ToDecimal(t.Value(i, schema.ColValue))
		if !ok {
			continue
		}
		out = append(out, RegionValue{
			Region: strings.TrimSpace(generic.ToString(t.Value(i, schema.ColRegion))),
			Value:  value,
		})
	}
	return out
}

func trimHeaders(t *generic.Table) *generic.Table {
	return t.RenameColumns(func(_ int, c string) string { return strings.TrimSpace(c) })
}

// prepareTerminations types the terminations table and appends the OK column.
func prepareTerminations(t *generic.Table) ([]Termination, *generic.Table) {
	out := generic.NewTable(t.Name, append(append([]string(nil), t.Columns...), ColAcknowledged))
	idCol, dateCol := t.Index(schema.ColID), t.Index(schema.ColTerminationAt)

	records := make([]Termination, 0, t.Len())
	for i, row := range t.Rows {
		rec := Termination{
			ID:           generic.ToEntityID(row[idCol]),
			Date:         generic.ToDatePtr(row[dateCol]),
			Acknowledged: strings.ToUpper(strings.TrimSpace(generic.ToString(t.Value(i, schema.ColTerminationOK)))) == "OK",
		}
		records = append(records, rec)

		typed := append(generic.Row(nil), row...)
		typed[idCol] = nil
		if rec.ID != nil {
			typed[idCol] = int64(*rec.ID)
		}
		typed[dateCol] = nil
		if rec.Date != nil {
			typed[dateCol] = rec.Date.Time
		}
		out.Append(append(typed, rec.Acknowledged))
	}
	return records, out
}

// =============================================================================
// CHECKS
// =============================================================================

// crossReference warns about terminated IDs missing from the roster.
func crossReference(active *generic.Table, terminations []Termination) string {
	if active.IsEmpty() || len(terminations) == 0 || !active.Has(schema.ColID) {
		return ""
	}
	roster := make(map[generic.EntityID]bool, active.Len())
	for _, v := range active.Column(schema.ColID) {
		if id := generic.ToEntityID(v); id != nil {
			roster[*id] = true
		}
	}
	seen := make(map[generic.EntityID]bool)
	var missing []generic.EntityID
	for _, t := range terminations {
		if t.ID == nil || roster[*t.ID] || seen[*t.ID] {
			continue
		}
		seen[*t.ID] = true
		missing = append(missing, *t.ID)
	}
	if len(missing) == 0 {
		return ""
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	if len(missing) > crossRefSamples {
		missing = missing[:crossRefSamples]
	}
	return fmt.Sprintf("Matrículas de DESLIGADOS não encontradas em ATIVOS: %v", missing)
}

// checkAdmissionMonth compares the predominant admission month with the events month.
func checkAdmissionMonth(t *generic.Table, rc RunContext) string {
	month, ok := predominantMonth(t, schema.ColAdmission)
	if !ok || month == rc.Events.Start.Month() {
		return ""
	}
	return fmt.Sprintf("Falha na Validação de Dados.\n\n"+
		"Para calcular o benefício de **%s**, o sistema precisa analisar os eventos de **%s**. "+
		"No entanto, o arquivo de `%s` que você enviou contém dados de um mês diferente (%s).\n\n"+
		"**Para corrigir, por favor, verifique se:**\n"+
		"1. O mês selecionado na interface está correto.\n"+
		"2. Os arquivos que você está enviando são os corretos para o período de cálculo desejado.",
		rc.BenefitMonthName(), rc.EventsMonthName(), TableAdmissions, MonthName(month))
}

// predominantMonth returns the statistical mode of the month of a date
// column; ties resolve to the earliest month.
func predominantMonth(t *generic.Table, col string) (time.Month, bool) {
	if t.IsEmpty() || !t.Has(col) {
		return 0, false
	}
	var counts [13]int
	found := false
	for _, v := range t.Column(col) {
		if d, ok := generic.ToDate(v); ok {
			counts[d.Month()]++
			found = true
		}
	}
	if !found {
		return 0, false
	}
	best := time.January
	for m := time.January; m <= time.December; m++ {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best, true
}
